package catalog

import (
	"context"
	"regexp"
	"testing"

	"eduledger/internal/apperr"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct{ mock.Mock }

func (m *MockRepository) GetLesson(ctx context.Context, q sqlx.ExtContext, id int64) (*Lesson, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Lesson), args.Error(1)
}

func (m *MockRepository) GetLecture(ctx context.Context, q sqlx.ExtContext, id int64) (*Lecture, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Lecture), args.Error(1)
}

func (m *MockRepository) GetContainer(ctx context.Context, q sqlx.ExtContext, id int64) (*Container, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Container), args.Error(1)
}

func (m *MockRepository) GetPackage(ctx context.Context, q sqlx.ExtContext, id int64) (*Package, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Package), args.Error(1)
}

func (m *MockRepository) Children(ctx context.Context, q sqlx.ExtContext, id int64) ([]Container, error) {
	args := m.Called(ctx, q, id)
	return args.Get(0).([]Container), args.Error(1)
}

func (m *MockRepository) ParentChain(ctx context.Context, q sqlx.ExtContext, id int64) ([]int64, error) {
	args := m.Called(ctx, q, id)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockRepository) IsAncestor(ctx context.Context, q sqlx.ExtContext, candidate, of int64) (bool, error) {
	args := m.Called(ctx, q, candidate, of)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) SetParent(ctx context.Context, q sqlx.ExtContext, childID int64, parentID *int64) error {
	args := m.Called(ctx, q, childID, parentID)
	return args.Error(0)
}

func setupService(t *testing.T) (Service, *MockRepository, sqlmock.Sqlmock) {
	conn, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	repo := new(MockRepository)
	return NewService(sqlx.NewDb(conn, "sqlmock"), repo), repo, sqlMock
}

func TestAttachChild_Success(t *testing.T) {
	svc, repo, sqlMock := setupService(t)

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).WillReturnResult(sqlmock.NewResult(0, 0))
	sqlMock.ExpectCommit()

	repo.On("GetContainer", mock.Anything, mock.Anything, int64(1)).Return(&Container{ID: 1}, nil)
	repo.On("GetContainer", mock.Anything, mock.Anything, int64(2)).Return(&Container{ID: 2}, nil)
	repo.On("IsAncestor", mock.Anything, mock.Anything, int64(2), int64(1)).Return(false, nil)
	repo.On("SetParent", mock.Anything, mock.Anything, int64(2), mock.MatchedBy(func(p *int64) bool {
		return p != nil && *p == 1
	})).Return(nil)

	err := svc.AttachChild(context.Background(), 1, 2)
	require.NoError(t, err)
	repo.AssertExpectations(t)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestAttachChild_RejectsCycle(t *testing.T) {
	svc, repo, sqlMock := setupService(t)

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).WillReturnResult(sqlmock.NewResult(0, 0))
	sqlMock.ExpectRollback()

	repo.On("GetContainer", mock.Anything, mock.Anything, int64(5)).Return(&Container{ID: 5}, nil)
	repo.On("GetContainer", mock.Anything, mock.Anything, int64(1)).Return(&Container{ID: 1}, nil)
	// 1 is already an ancestor of 5, so 1 cannot move under 5.
	repo.On("IsAncestor", mock.Anything, mock.Anything, int64(1), int64(5)).Return(true, nil)

	err := svc.AttachChild(context.Background(), 5, 1)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	repo.AssertNotCalled(t, "SetParent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestAttachChild_Self(t *testing.T) {
	svc, _, _ := setupService(t)

	err := svc.AttachChild(context.Background(), 4, 4)
	assert.True(t, apperr.IsValidation(err))
}

func TestAttachChild_MissingParent(t *testing.T) {
	svc, repo, sqlMock := setupService(t)

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).WillReturnResult(sqlmock.NewResult(0, 0))
	sqlMock.ExpectRollback()

	repo.On("GetContainer", mock.Anything, mock.Anything, int64(8)).Return(nil, apperr.ErrNotFound)

	err := svc.AttachChild(context.Background(), 8, 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDetach(t *testing.T) {
	svc, repo, sqlMock := setupService(t)

	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()
	repo.On("SetParent", mock.Anything, mock.Anything, int64(3), (*int64)(nil)).Return(nil)

	require.NoError(t, svc.Detach(context.Background(), 3))
	repo.AssertExpectations(t)
}

func TestChildren_UnknownContainer(t *testing.T) {
	svc, repo, _ := setupService(t)
	repo.On("GetContainer", mock.Anything, mock.Anything, int64(12)).Return(nil, apperr.ErrNotFound)

	_, err := svc.Children(context.Background(), 12)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	repo.AssertNotCalled(t, "Children", mock.Anything, mock.Anything, mock.Anything)
}
