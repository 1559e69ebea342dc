package wallet

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Service is the read side of wallets; mutations happen through the settlement engine.
type Service interface {
	Get(ctx context.Context, userID int64) (*Wallet, error)
	Balance(ctx context.Context, userID, lecturerID int64) (int64, error)
}

type service struct {
	db   *sqlx.DB
	repo Repository
}

func NewService(db *sqlx.DB, repo Repository) Service {
	return &service{db: db, repo: repo}
}

func (s *service) Get(ctx context.Context, userID int64) (*Wallet, error) {
	return s.repo.Get(ctx, s.db, userID)
}

func (s *service) Balance(ctx context.Context, userID, lecturerID int64) (int64, error) {
	return s.repo.Balance(ctx, s.db, userID, Lecturer(lecturerID))
}
