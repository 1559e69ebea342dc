package code

import (
	"context"
	"fmt"

	"eduledger/internal/apperr"
	"eduledger/internal/db"
	"eduledger/internal/logger"
	"eduledger/internal/metrics"
	"eduledger/internal/user"
	"eduledger/internal/wallet"

	"github.com/jmoiron/sqlx"
)

type Service interface {
	Issue(ctx context.Context, req IssueRequest) ([]Code, error)
	Redeem(ctx context.Context, token string, userID int64) (*Code, error)
	RedeemTx(ctx context.Context, tx *sqlx.Tx, token string, userID int64) (*Code, error)
	Revoke(ctx context.Context, token string) error
	List(ctx context.Context, f Filter) ([]Code, error)
}

type service struct {
	db         *sqlx.DB
	repo       Repository
	userRepo   user.Repository
	walletRepo wallet.Repository
	tokens     Tokenizer
}

func NewService(db *sqlx.DB, repo Repository, userRepo user.Repository, walletRepo wallet.Repository, tokens Tokenizer) Service {
	return &service{
		db:         db,
		repo:       repo,
		userRepo:   userRepo,
		walletRepo: walletRepo,
		tokens:     tokens,
	}
}

func validateIssue(req IssueRequest) error {
	verr := &apperr.ValidationError{}
	if !req.Kind.Valid() {
		verr.Add("kind", "must be one of general, specific, promo")
	}
	if req.PointsAmount <= 0 {
		verr.Add("points_amount", "must be positive")
	}
	if req.Count <= 0 || req.Count > maxIssueCount {
		verr.Add("count", fmt.Sprintf("must be between 1 and %d", maxIssueCount))
	}
	if req.Kind == KindSpecific && req.LecturerID == nil {
		verr.Add("lecturer_id", "is required for specific codes")
	}
	if req.Kind != KindSpecific && req.LecturerID != nil {
		verr.Add("lecturer_id", "is only allowed on specific codes")
	}
	return verr.OrNil()
}

// Issue creates req.Count codes in one transaction: either all of them exist afterwards
// or none do.
func (s *service) Issue(ctx context.Context, req IssueRequest) ([]Code, error) {
	if err := validateIssue(req); err != nil {
		return nil, err
	}

	var createdBy *int64
	if req.IssuedBy != 0 {
		createdBy = &req.IssuedBy
	}

	codes := make([]Code, 0, req.Count)
	err := db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if req.LecturerID != nil {
			ok, err := s.userRepo.HasRole(ctx, tx, *req.LecturerID, user.RoleLecturer)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.Invalid("lecturer_id", fmt.Sprintf("user %d is not a lecturer", *req.LecturerID))
			}
		}

		for i := 0; i < req.Count; i++ {
			c := Code{
				Kind:         req.Kind,
				LecturerID:   req.LecturerID,
				PointsAmount: req.PointsAmount,
				CreatedBy:    createdBy,
			}
			if err := s.repo.Insert(ctx, tx, &c); err != nil {
				return err
			}
			c.Token = s.tokens.Token(c.ID)
			if err := s.repo.SetToken(ctx, tx, c.ID, c.Token); err != nil {
				return err
			}
			codes = append(codes, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordCodesIssued(string(req.Kind), len(codes))
	logger.Info("codes issued", "kind", req.Kind, "count", len(codes), "points", req.PointsAmount)
	return codes, nil
}

func (s *service) Redeem(ctx context.Context, token string, userID int64) (*Code, error) {
	var c *Code
	err := db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		c, err = s.RedeemTx(ctx, tx, token, userID)
		return err
	})
	return c, err
}

// RedeemTx marks the code redeemed and credits its value within tx. A token that never
// existed and one that was already redeemed both yield apperr.ErrNotFound.
func (s *service) RedeemTx(ctx context.Context, tx *sqlx.Tx, token string, userID int64) (*Code, error) {
	token = Normalize(token)
	if token == "" {
		return nil, apperr.Invalid("token", "is required")
	}

	c, err := s.repo.MarkRedeemed(ctx, tx, token, userID)
	if err != nil {
		return nil, err
	}

	target := wallet.General()
	if c.Kind == KindSpecific {
		if c.LecturerID == nil {
			return nil, fmt.Errorf("specific code %d has no lecturer", c.ID)
		}
		target = wallet.Lecturer(*c.LecturerID)
	}

	if _, err := s.walletRepo.Credit(ctx, tx, userID, target, c.PointsAmount); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Revoke(ctx context.Context, token string) error {
	token = Normalize(token)
	return db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		deleted, err := s.repo.DeleteUnredeemed(ctx, tx, token)
		if err != nil {
			return err
		}
		if deleted {
			return nil
		}

		exists, err := s.repo.Exists(ctx, tx, token)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: code %s is already redeemed", apperr.ErrConflict, token)
		}
		return fmt.Errorf("code %s: %w", token, apperr.ErrNotFound)
	})
}

func (s *service) List(ctx context.Context, f Filter) ([]Code, error) {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, s.db, f)
}
