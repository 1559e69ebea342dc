package entitlement

import (
	"context"

	"eduledger/internal/catalog"
	"eduledger/internal/db"
	"eduledger/internal/logger"

	"github.com/jmoiron/sqlx"
)

type Service interface {
	HasAccess(ctx context.Context, studentID, containerID int64) (bool, error)
	HasLectureAccess(ctx context.Context, studentID, lectureID int64) (bool, error)
}

type service struct {
	db          *sqlx.DB
	repo        Repository
	catalogRepo catalog.Repository
}

func NewService(db *sqlx.DB, repo Repository, catalogRepo catalog.Repository) Service {
	return &service{db: db, repo: repo, catalogRepo: catalogRepo}
}

// HasAccess reports whether the student bought containerID or any container above it.
// The container check, the purchase set and the walk share one snapshot so a reparent
// committed mid-walk cannot mix two trees.
func (s *service) HasAccess(ctx context.Context, studentID, containerID int64) (bool, error) {
	var ok bool
	err := db.WithSnapshot(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := s.catalogRepo.GetContainer(ctx, tx, containerID); err != nil {
			return err
		}
		var err error
		ok, err = s.covered(ctx, tx, studentID, containerID)
		return err
	})
	return ok, err
}

// HasLectureAccess grants a lecture bought directly with points, or one placed inside
// a container the student has access to.
func (s *service) HasLectureAccess(ctx context.Context, studentID, lectureID int64) (bool, error) {
	var ok bool
	err := db.WithSnapshot(ctx, s.db, func(tx *sqlx.Tx) error {
		lecture, err := s.catalogRepo.GetLecture(ctx, tx, lectureID)
		if err != nil {
			return err
		}

		if ok, err = s.repo.HasLectureGrant(ctx, tx, studentID, lectureID); err != nil || ok {
			return err
		}

		if lecture.ContainerID == nil {
			return nil
		}
		ok, err = s.covered(ctx, tx, studentID, *lecture.ContainerID)
		return err
	})
	return ok, err
}

func (s *service) covered(ctx context.Context, q sqlx.ExtContext, studentID, containerID int64) (bool, error) {
	purchased, err := s.repo.PurchasedContainers(ctx, q, studentID)
	if err != nil {
		return false, err
	}
	if len(purchased) == 0 {
		return false, nil
	}

	parentOf := func(id int64) (*int64, error) {
		c, err := s.catalogRepo.GetContainer(ctx, q, id)
		if err != nil {
			return nil, err
		}
		return c.ParentID, nil
	}

	ok, err := Covers(containerID, parentOf, purchased)
	if err != nil {
		logger.Error("entitlement walk failed", "student_id", studentID, "container_id", containerID, "error", err)
		return false, err
	}
	return ok, nil
}
