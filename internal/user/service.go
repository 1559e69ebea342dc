package user

import (
	"context"
	"errors"

	"eduledger/internal/auth"
	"eduledger/internal/db"
	"eduledger/internal/wallet"

	"github.com/jmoiron/sqlx"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, string, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, string, error)
	Profile(ctx context.Context, userID int64) (*Profile, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *User, error)
}

type service struct {
	db         *sqlx.DB
	repo       Repository
	walletRepo wallet.Repository
	jwtSecret  string
}

func NewService(db *sqlx.DB, repo Repository, walletRepo wallet.Repository, jwtSecret string) Service {
	return &service{
		db:         db,
		repo:       repo,
		walletRepo: walletRepo,
		jwtSecret:  jwtSecret,
	}
}

// Register creates the user and its zero-balance wallet in one transaction.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", ErrEmailExists
	}

	role := req.Role
	if role == "" {
		role = RoleStudent
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", "", err
	}

	var u *User
	err = db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		u, err = s.repo.Create(ctx, tx, req.Name, req.Email, passwordHash, role)
		if err != nil {
			return err
		}
		return s.walletRepo.Create(ctx, tx, u.ID)
	})
	if err != nil {
		return nil, "", "", err
	}

	pair, err := auth.IssueTokens(auth.Principal{UserID: u.ID, Role: string(u.Role)}, s.jwtSecret)
	if err != nil {
		return nil, "", "", err
	}

	return u, pair.Access, pair.Refresh, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, "", "", ErrInvalidCredentials
	}

	pair, err := auth.IssueTokens(auth.Principal{UserID: u.ID, Role: string(u.Role)}, s.jwtSecret)
	if err != nil {
		return nil, "", "", err
	}

	return u, pair.Access, pair.Refresh, nil
}

func (s *service) Profile(ctx context.Context, userID int64) (*Profile, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	w, err := s.walletRepo.Get(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: *u, Wallet: w}, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	p, err := auth.ParseRefreshToken(refreshToken, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	u, err := s.repo.FindByID(ctx, p.UserID)
	if err != nil {
		return "", nil, ErrUserNotFound
	}

	// Role comes from the stored user so a demotion takes effect on the next refresh.
	access, err := auth.IssueAccessToken(auth.Principal{UserID: u.ID, Role: string(u.Role)}, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return access, u, nil
}
