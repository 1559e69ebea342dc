package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eduledger/internal/apperr"
	"eduledger/internal/db"

	"github.com/jmoiron/sqlx"
)

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) Create(ctx context.Context, q sqlx.ExtContext, userID int64) error {
	_, err := q.ExecContext(ctx, `INSERT INTO wallets (user_id) VALUES ($1)`, userID)
	return db.Classify(err)
}

func (r *repository) Get(ctx context.Context, q sqlx.ExtContext, userID int64) (*Wallet, error) {
	w := &Wallet{}
	err := sqlx.GetContext(ctx, q, w, `
		SELECT user_id, general_points, updated_at
		FROM wallets
		WHERE user_id = $1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("wallet of user %d: %w", userID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	w.LecturerPoints = []LecturerBalance{}
	err = sqlx.SelectContext(ctx, q, &w.LecturerPoints, `
		SELECT lecturer_id, points
		FROM lecturer_points
		WHERE user_id = $1
		ORDER BY lecturer_id
	`, userID)
	if err != nil {
		return nil, err
	}

	return w, nil
}

func (r *repository) Balance(ctx context.Context, q sqlx.ExtContext, userID int64, target Target) (int64, error) {
	var points int64
	if target.IsGeneral() {
		err := sqlx.GetContext(ctx, q, &points, `SELECT general_points FROM wallets WHERE user_id = $1`, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("wallet of user %d: %w", userID, apperr.ErrNotFound)
		}
		return points, err
	}

	err := sqlx.GetContext(ctx, q, &points, `
		SELECT points FROM lecturer_points WHERE user_id = $1 AND lecturer_id = $2
	`, userID, target.LecturerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return points, err
}

func (r *repository) Credit(ctx context.Context, q sqlx.ExtContext, userID int64, target Target, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, apperr.Invalid("amount", "must be positive")
	}

	var balance int64
	if target.IsGeneral() {
		err := sqlx.GetContext(ctx, q, &balance, `
			UPDATE wallets
			SET general_points = general_points + $2, updated_at = NOW()
			WHERE user_id = $1
			RETURNING general_points
		`, userID, amount)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("wallet of user %d: %w", userID, apperr.ErrNotFound)
		}
		return balance, db.Classify(err)
	}

	err := sqlx.GetContext(ctx, q, &balance, `
		INSERT INTO lecturer_points (user_id, lecturer_id, points)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, lecturer_id)
		DO UPDATE SET points = lecturer_points.points + EXCLUDED.points, updated_at = NOW()
		RETURNING points
	`, userID, target.LecturerID, amount)
	return balance, db.Classify(err)
}

func (r *repository) Debit(ctx context.Context, q sqlx.ExtContext, userID int64, target Target, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, apperr.Invalid("amount", "must be positive")
	}

	if target.IsGeneral() {
		var current int64
		err := sqlx.GetContext(ctx, q, &current, `
			SELECT general_points
			FROM wallets
			WHERE user_id = $1
			FOR UPDATE
		`, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("wallet of user %d: %w", userID, apperr.ErrNotFound)
		}
		if err != nil {
			return 0, db.Classify(err)
		}

		newBalance := current - amount
		if newBalance < 0 {
			return current, apperr.ErrInsufficientBalance
		}

		_, err = q.ExecContext(ctx, `
			UPDATE wallets
			SET general_points = $2, updated_at = NOW()
			WHERE user_id = $1
		`, userID, newBalance)
		return newBalance, db.Classify(err)
	}

	var current int64
	err := sqlx.GetContext(ctx, q, &current, `
		SELECT points
		FROM lecturer_points
		WHERE user_id = $1 AND lecturer_id = $2
		FOR UPDATE
	`, userID, target.LecturerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.ErrInsufficientBalance
	}
	if err != nil {
		return 0, db.Classify(err)
	}

	newBalance := current - amount
	if newBalance < 0 {
		return current, apperr.ErrInsufficientBalance
	}

	_, err = q.ExecContext(ctx, `
		UPDATE lecturer_points
		SET points = $3, updated_at = NOW()
		WHERE user_id = $1 AND lecturer_id = $2
	`, userID, target.LecturerID, newBalance)
	return newBalance, db.Classify(err)
}
