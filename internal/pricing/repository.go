package pricing

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

const ruleColumns = `id, lecturer_id, subject_id, level_id, center_id, daily_price,
	multi_session_price, multi_session_count, description, created_at, updated_at`

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

// Resolve picks the center specific rule for key when one exists and falls back to the
// lecturer's global rule otherwise.
func (r *repository) Resolve(ctx context.Context, q sqlx.ExtContext, key Key) (*Rule, error) {
	rule := &Rule{}
	err := sqlx.GetContext(ctx, q, rule, `
		SELECT `+ruleColumns+`
		FROM pricing_rules
		WHERE lecturer_id = $1
		  AND subject_id = $2
		  AND level_id = $3
		  AND (center_id = $4 OR center_id IS NULL)
		ORDER BY center_id NULLS LAST
		LIMIT 1
	`, key.LecturerID, key.SubjectID, key.LevelID, key.CenterID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no pricing configured for lecturer %d subject %d level %d: %w",
			key.LecturerID, key.SubjectID, key.LevelID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

func (r *repository) Get(ctx context.Context, q sqlx.ExtContext, id int64) (*Rule, error) {
	rule := &Rule{}
	err := sqlx.GetContext(ctx, q, rule, `SELECT `+ruleColumns+` FROM pricing_rules WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pricing rule %d: %w", id, apperr.ErrNotFound)
	}
	return rule, err
}

func (r *repository) Create(ctx context.Context, q sqlx.ExtContext, rule *Rule) error {
	err := q.QueryRowxContext(ctx, `
		INSERT INTO pricing_rules (
			lecturer_id, subject_id, level_id, center_id,
			daily_price, multi_session_price, multi_session_count, description
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`,
		rule.LecturerID, rule.SubjectID, rule.LevelID, rule.CenterID,
		rule.DailyPrice, rule.MultiSessionPrice, rule.MultiSessionCount, rule.Description,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	return db.Classify(err)
}

func (r *repository) Update(ctx context.Context, q sqlx.ExtContext, id int64, req UpdateRuleRequest) (*Rule, error) {
	rule := &Rule{}
	err := sqlx.GetContext(ctx, q, rule, `
		UPDATE pricing_rules
		SET daily_price = $2,
		    multi_session_price = $3,
		    multi_session_count = $4,
		    description = $5,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+ruleColumns,
		id, req.DailyPrice, req.MultiSessionPrice, req.MultiSessionCount, req.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pricing rule %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, db.Classify(err)
	}
	return rule, nil
}

func (r *repository) Delete(ctx context.Context, q sqlx.ExtContext, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM pricing_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("pricing rule %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (r *repository) List(ctx context.Context, q sqlx.ExtContext, f Filter) ([]Rule, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(column string, v *int64) {
		if v != nil {
			args = append(args, *v)
			where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
		}
	}
	add("lecturer_id", f.LecturerID)
	add("subject_id", f.SubjectID)
	add("level_id", f.LevelID)

	query := `SELECT ` + ruleColumns + ` FROM pricing_rules`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY lecturer_id, subject_id, level_id, center_id NULLS FIRST`

	rules := []Rule{}
	err := sqlx.SelectContext(ctx, q, &rules, query, args...)
	return rules, err
}
