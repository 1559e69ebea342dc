package code

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eduledger/internal/apperr"
	"eduledger/internal/db"

	"github.com/jmoiron/sqlx"
)

const codeColumns = `id, token, kind, lecturer_id, points_amount, redeemed, redeemed_by, redeemed_at, created_by, created_at`

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, q sqlx.ExtContext, c *Code) error {
	err := q.QueryRowxContext(ctx, `
		INSERT INTO codes (kind, lecturer_id, points_amount, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, c.Kind, c.LecturerID, c.PointsAmount, c.CreatedBy).Scan(&c.ID, &c.CreatedAt)
	return db.Classify(err)
}

func (r *repository) SetToken(ctx context.Context, q sqlx.ExtContext, id int64, token string) error {
	_, err := q.ExecContext(ctx, `UPDATE codes SET token = $2 WHERE id = $1`, id, token)
	return db.Classify(err)
}

// MarkRedeemed flips the redeemed flag only if it is still unset, so of any number of
// concurrent callers exactly one gets the row back.
func (r *repository) MarkRedeemed(ctx context.Context, q sqlx.ExtContext, token string, userID int64) (*Code, error) {
	var c Code
	err := sqlx.GetContext(ctx, q, &c, `
		UPDATE codes
		SET redeemed = TRUE, redeemed_by = $2, redeemed_at = NOW()
		WHERE token = $1 AND redeemed = FALSE
		RETURNING `+codeColumns, token, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("code %s: %w", token, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, db.Classify(err)
	}
	return &c, nil
}

func (r *repository) DeleteUnredeemed(ctx context.Context, q sqlx.ExtContext, token string) (bool, error) {
	res, err := q.ExecContext(ctx, `DELETE FROM codes WHERE token = $1 AND redeemed = FALSE`, token)
	if err != nil {
		return false, db.Classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repository) Exists(ctx context.Context, q sqlx.ExtContext, token string) (bool, error) {
	return db.Exists(ctx, q, `SELECT EXISTS(SELECT 1 FROM codes WHERE token = $1)`, token)
}

func (r *repository) List(ctx context.Context, q sqlx.ExtContext, f Filter) ([]Code, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.Redeemed != nil {
		args = append(args, *f.Redeemed)
		where = append(where, fmt.Sprintf("redeemed = $%d", len(args)))
	}
	if f.LecturerID != nil {
		args = append(args, *f.LecturerID)
		where = append(where, fmt.Sprintf("lecturer_id = $%d", len(args)))
	}

	query := `SELECT ` + codeColumns + ` FROM codes`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(` ORDER BY id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	codes := []Code{}
	err := sqlx.SelectContext(ctx, q, &codes, query, args...)
	return codes, err
}
