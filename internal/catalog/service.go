package catalog

import (
	"context"
	"fmt"

	"eduledger/internal/apperr"
	"eduledger/internal/db"
	"eduledger/internal/logger"

	"github.com/jmoiron/sqlx"
)

// Service maintains the container tree edges. Reads used by the settlement engine go
// straight through the Repository inside the engine's own transaction.
type Service interface {
	GetContainer(ctx context.Context, id int64) (*Container, error)
	Children(ctx context.Context, id int64) ([]Container, error)
	ParentChain(ctx context.Context, id int64) ([]int64, error)
	AttachChild(ctx context.Context, parentID, childID int64) error
	Detach(ctx context.Context, childID int64) error
}

type service struct {
	db   *sqlx.DB
	repo Repository
}

func NewService(db *sqlx.DB, repo Repository) Service {
	return &service{db: db, repo: repo}
}

func (s *service) GetContainer(ctx context.Context, id int64) (*Container, error) {
	return s.repo.GetContainer(ctx, s.db, id)
}

func (s *service) Children(ctx context.Context, id int64) ([]Container, error) {
	if _, err := s.repo.GetContainer(ctx, s.db, id); err != nil {
		return nil, err
	}
	return s.repo.Children(ctx, s.db, id)
}

func (s *service) ParentChain(ctx context.Context, id int64) ([]int64, error) {
	if _, err := s.repo.GetContainer(ctx, s.db, id); err != nil {
		return nil, err
	}
	return s.repo.ParentChain(ctx, s.db, id)
}

// AttachChild moves childID under parentID. Both ends of the edge change in the same
// transaction, and an edge that would close a cycle is rejected.
func (s *service) AttachChild(ctx context.Context, parentID, childID int64) error {
	if parentID == childID {
		return apperr.Invalid("parent_id", "a container cannot contain itself")
	}

	err := db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		lockKey := db.LockKey("container_tree")
		if err := db.AdvisoryLock(ctx, tx, lockKey); err != nil {
			return err
		}
		if _, err := s.repo.GetContainer(ctx, tx, parentID); err != nil {
			return err
		}
		if _, err := s.repo.GetContainer(ctx, tx, childID); err != nil {
			return err
		}

		cyclic, err := s.repo.IsAncestor(ctx, tx, childID, parentID)
		if err != nil {
			return err
		}
		if cyclic {
			return apperr.Invalid("parent_id", fmt.Sprintf("container %d is a descendant of %d", parentID, childID))
		}

		return s.repo.SetParent(ctx, tx, childID, &parentID)
	})
	if err != nil {
		return err
	}

	logger.Info("container attached", "parent_id", parentID, "child_id", childID)
	return nil
}

func (s *service) Detach(ctx context.Context, childID int64) error {
	return db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return s.repo.SetParent(ctx, tx, childID, nil)
	})
}
