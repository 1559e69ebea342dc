package pricing

import (
	"context"
	"errors"
	"fmt"

	"eduledger/internal/apperr"
	"eduledger/internal/db"
	"eduledger/internal/logger"

	"github.com/jmoiron/sqlx"
)

type Service interface {
	Resolve(ctx context.Context, key Key) (*Rule, error)
	Create(ctx context.Context, req CreateRuleRequest) (*Rule, error)
	Update(ctx context.Context, id int64, req UpdateRuleRequest) (*Rule, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f Filter) ([]Rule, error)
}

type service struct {
	db   *sqlx.DB
	repo Repository
}

func NewService(db *sqlx.DB, repo Repository) Service {
	return &service{db: db, repo: repo}
}

func (s *service) Resolve(ctx context.Context, key Key) (*Rule, error) {
	return s.repo.Resolve(ctx, s.db, key)
}

func validatePrices(daily, multi int64, count int) error {
	verr := &apperr.ValidationError{}
	if daily < 0 {
		verr.Add("daily_price", "must not be negative")
	}
	if multi < 0 {
		verr.Add("multi_session_price", "must not be negative")
	}
	if count < 1 {
		verr.Add("multi_session_count", "must be at least 1")
	}
	return verr.OrNil()
}

func (s *service) Create(ctx context.Context, req CreateRuleRequest) (*Rule, error) {
	if err := validatePrices(req.DailyPrice, req.MultiSessionPrice, req.MultiSessionCount); err != nil {
		return nil, err
	}

	rule := &Rule{
		LecturerID:        req.LecturerID,
		SubjectID:         req.SubjectID,
		LevelID:           req.LevelID,
		CenterID:          req.CenterID,
		DailyPrice:        req.DailyPrice,
		MultiSessionPrice: req.MultiSessionPrice,
		MultiSessionCount: req.MultiSessionCount,
		Description:       req.Description,
	}

	err := db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return s.repo.Create(ctx, tx, rule)
	})
	if errors.Is(err, apperr.ErrConflict) {
		return nil, fmt.Errorf("%w: a pricing rule already exists for this lecturer, subject, level and center", apperr.ErrConflict)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("pricing rule created", "rule_id", rule.ID, "lecturer_id", rule.LecturerID)
	return rule, nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateRuleRequest) (*Rule, error) {
	if err := validatePrices(req.DailyPrice, req.MultiSessionPrice, req.MultiSessionCount); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, s.db, id, req)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, s.db, id)
}

func (s *service) List(ctx context.Context, f Filter) ([]Rule, error) {
	return s.repo.List(ctx, s.db, f)
}
