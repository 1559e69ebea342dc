package user

import (
	"context"
	"errors"
	"testing"

	"eduledger/internal/auth"
	"eduledger/internal/wallet"
	"eduledger/internal/wallet/wallettest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type MockRepository struct{ mock.Mock }

func (m *MockRepository) Create(ctx context.Context, q sqlx.ExtContext, name, email, passwordHash string, role Role) (*User, error) {
	args := m.Called(ctx, q, name, email, passwordHash, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) HasRole(ctx context.Context, q sqlx.ExtContext, id int64, role Role) (bool, error) {
	args := m.Called(ctx, q, id, role)
	return args.Bool(0), args.Error(1)
}

func newTestService(t *testing.T) (Service, *MockRepository, *wallettest.MockRepository, sqlmock.Sqlmock) {
	conn, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	repo := new(MockRepository)
	walletRepo := new(wallettest.MockRepository)
	svc := NewService(sqlx.NewDb(conn, "sqlmock"), repo, walletRepo, testSecret)
	return svc, repo, walletRepo, sqlMock
}

func TestService_Register_CreatesWalletInSameTransaction(t *testing.T) {
	svc, repo, walletRepo, sqlMock := newTestService(t)

	repo.On("EmailExists", mock.Anything, "kid@example.com").Return(false, nil)
	repo.On("Create", mock.Anything, mock.Anything, "Kid", "kid@example.com", mock.Anything, RoleStudent).
		Return(&User{ID: 12, Name: "Kid", Email: "kid@example.com", Role: RoleStudent}, nil)
	walletRepo.On("Create", mock.Anything, mock.Anything, int64(12)).Return(nil)

	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()

	u, access, refresh, err := svc.Register(context.Background(), RegisterRequest{Name: "Kid", Email: "kid@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), u.ID)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
	walletRepo.AssertExpectations(t)
}

func TestService_Register_WalletFailureRollsBack(t *testing.T) {
	svc, repo, walletRepo, sqlMock := newTestService(t)

	repo.On("EmailExists", mock.Anything, "p@example.com").Return(false, nil)
	repo.On("Create", mock.Anything, mock.Anything, "P", "p@example.com", mock.Anything, RoleParent).
		Return(&User{ID: 13, Role: RoleParent}, nil)
	walletRepo.On("Create", mock.Anything, mock.Anything, int64(13)).Return(errors.New("insert failed"))

	sqlMock.ExpectBegin()
	sqlMock.ExpectRollback()

	_, _, _, err := svc.Register(context.Background(), RegisterRequest{Name: "P", Email: "p@example.com", Password: "password123", Role: RoleParent})
	require.Error(t, err)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestService_Register_EmailExists(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	repo.On("EmailExists", mock.Anything, "dup@example.com").Return(true, nil)

	_, _, _, err := svc.Register(context.Background(), RegisterRequest{Email: "dup@example.com", Password: "password123"})
	assert.Equal(t, ErrEmailExists, err)
}

func TestService_Login(t *testing.T) {
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	svc, repo, _, _ := newTestService(t)
	repo.On("FindByEmail", mock.Anything, "s@example.com").Return(&User{ID: 3, Email: "s@example.com", PasswordHash: hash, Role: RoleStudent}, nil)
	repo.On("FindByEmail", mock.Anything, "missing@example.com").Return(nil, ErrUserNotFound)

	u, access, _, err := svc.Login(context.Background(), LoginRequest{Email: "s@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), u.ID)

	p, err := auth.ParseAccessToken(access, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "student", p.Role)

	_, _, _, err = svc.Login(context.Background(), LoginRequest{Email: "s@example.com", Password: "nope"})
	assert.Equal(t, ErrInvalidCredentials, err)

	_, _, _, err = svc.Login(context.Background(), LoginRequest{Email: "missing@example.com", Password: "password123"})
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestService_Profile(t *testing.T) {
	svc, repo, walletRepo, _ := newTestService(t)
	repo.On("FindByID", mock.Anything, int64(3)).Return(&User{ID: 3, Role: RoleStudent}, nil)
	walletRepo.On("Get", mock.Anything, mock.Anything, int64(3)).Return(&wallet.Wallet{UserID: 3, GeneralPoints: 90}, nil)

	p, err := svc.Profile(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(90), p.Wallet.GeneralPoints)
}

func TestService_RefreshToken(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	repo.On("FindByID", mock.Anything, int64(3)).Return(&User{ID: 3, Email: "s@example.com", Role: RoleStudent}, nil)

	pair, err := auth.IssueTokens(auth.Principal{UserID: 3, Role: "student"}, testSecret)
	require.NoError(t, err)

	_, _, err = svc.RefreshToken(context.Background(), pair.Access)
	assert.ErrorIs(t, err, auth.ErrWrongTokenKind)

	access, u, err := svc.RefreshToken(context.Background(), pair.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.Equal(t, int64(3), u.ID)
}
