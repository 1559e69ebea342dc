package revenue

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) Rollup(ctx context.Context, q sqlx.ExtContext, f Filter) ([]Row, error) {
	args := []interface{}{f.From, f.To}
	query := `
		SELECT lecturer_id, center_id, payment_type,
		       COUNT(*) AS attendances,
		       COALESCE(SUM(amount_paid), 0) AS amount,
		       COALESCE(SUM(sessions_paid_for), 0) AS sessions_sold
		FROM attendances
		WHERE attendance_date >= $1 AND attendance_date < $2`

	if f.LecturerID != nil {
		args = append(args, *f.LecturerID)
		query += fmt.Sprintf(" AND lecturer_id = $%d", len(args))
	}
	if f.CenterID != nil {
		args = append(args, *f.CenterID)
		query += fmt.Sprintf(" AND center_id = $%d", len(args))
	}
	query += `
		GROUP BY lecturer_id, center_id, payment_type
		ORDER BY lecturer_id, center_id, payment_type`

	rows := []Row{}
	err := sqlx.SelectContext(ctx, q, &rows, query, args...)
	return rows, err
}
