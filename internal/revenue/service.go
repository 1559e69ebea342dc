package revenue

import (
	"context"
	"time"

	"eduledger/internal/apperr"

	"github.com/jmoiron/sqlx"
)

const maxRange = 366 * 24 * time.Hour

type Service interface {
	Summarize(ctx context.Context, f Filter) (*Summary, error)
}

type service struct {
	db   *sqlx.DB
	repo Repository
}

func NewService(db *sqlx.DB, repo Repository) Service {
	return &service{db: db, repo: repo}
}

// Summarize rolls settled attendances up per lecturer, center and payment type.
func (s *service) Summarize(ctx context.Context, f Filter) (*Summary, error) {
	if !f.To.After(f.From) {
		return nil, apperr.Invalid("to", "must be after from")
	}
	if f.To.Sub(f.From) > maxRange {
		return nil, apperr.Invalid("to", "range must not exceed one year")
	}

	rows, err := s.repo.Rollup(ctx, s.db, f)
	if err != nil {
		return nil, err
	}

	sum := &Summary{From: f.From, To: f.To, Rows: rows}
	for _, r := range rows {
		sum.TotalAmount += r.Amount
		sum.TotalAttendances += r.Attendances
	}
	return sum, nil
}
