package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eduledger/internal/apperr"

	"github.com/jmoiron/sqlx"
)

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func notFound(err error, what string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", what, id, apperr.ErrNotFound)
	}
	return err
}

func (r *repository) GetLesson(ctx context.Context, q sqlx.ExtContext, id int64) (*Lesson, error) {
	var l Lesson
	err := sqlx.GetContext(ctx, q, &l, `
		SELECT id, lecturer_id, subject_id, level_id, center_id, starts_at
		FROM lessons
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, notFound(err, "lesson", id)
	}
	return &l, nil
}

func (r *repository) GetLecture(ctx context.Context, q sqlx.ExtContext, id int64) (*Lecture, error) {
	var l Lecture
	err := sqlx.GetContext(ctx, q, &l, `
		SELECT id, lecturer_id, container_id, title, price
		FROM lectures
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, notFound(err, "lecture", id)
	}
	return &l, nil
}

func (r *repository) GetContainer(ctx context.Context, q sqlx.ExtContext, id int64) (*Container, error) {
	var c Container
	err := sqlx.GetContext(ctx, q, &c, `
		SELECT id, parent_id, lecturer_id, title, price, created_at
		FROM containers
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, notFound(err, "container", id)
	}
	return &c, nil
}

func (r *repository) GetPackage(ctx context.Context, q sqlx.ExtContext, id int64) (*Package, error) {
	var p Package
	err := sqlx.GetContext(ctx, q, &p, `SELECT id, name, price FROM packages WHERE id = $1`, id)
	if err != nil {
		return nil, notFound(err, "package", id)
	}

	p.Grants = []PackageGrant{}
	err = sqlx.SelectContext(ctx, q, &p.Grants, `
		SELECT lecturer_id, points
		FROM package_grants
		WHERE package_id = $1
		ORDER BY lecturer_id
	`, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Children(ctx context.Context, q sqlx.ExtContext, id int64) ([]Container, error) {
	children := []Container{}
	err := sqlx.SelectContext(ctx, q, &children, `
		SELECT id, parent_id, lecturer_id, title, price, created_at
		FROM containers
		WHERE parent_id = $1
		ORDER BY id
	`, id)
	return children, err
}

// ParentChain lists the ancestors of id, nearest first, excluding id itself.
func (r *repository) ParentChain(ctx context.Context, q sqlx.ExtContext, id int64) ([]int64, error) {
	chain := []int64{}
	err := sqlx.SelectContext(ctx, q, &chain, `
		WITH RECURSIVE chain(id, parent_id, depth) AS (
			SELECT id, parent_id, 0 FROM containers WHERE id = $1
			UNION ALL
			SELECT c.id, c.parent_id, chain.depth + 1
			FROM containers c
			JOIN chain ON c.id = chain.parent_id
			WHERE chain.depth < 1000
		)
		SELECT id FROM chain WHERE depth > 0 ORDER BY depth
	`, id)
	return chain, err
}

// IsAncestor reports whether candidate is of itself or one of its ancestors.
// UNION (not UNION ALL) keeps the recursion finite on corrupted, cyclic data.
func (r *repository) IsAncestor(ctx context.Context, q sqlx.ExtContext, candidate, of int64) (bool, error) {
	var found bool
	err := sqlx.GetContext(ctx, q, &found, `
		WITH RECURSIVE chain(id, parent_id) AS (
			SELECT id, parent_id FROM containers WHERE id = $2
			UNION
			SELECT c.id, c.parent_id
			FROM containers c
			JOIN chain ON c.id = chain.parent_id
		)
		SELECT EXISTS(SELECT 1 FROM chain WHERE id = $1)
	`, candidate, of)
	return found, err
}

func (r *repository) SetParent(ctx context.Context, q sqlx.ExtContext, childID int64, parentID *int64) error {
	res, err := q.ExecContext(ctx, `UPDATE containers SET parent_id = $2 WHERE id = $1`, childID, parentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("container %d: %w", childID, apperr.ErrNotFound)
	}
	return nil
}
