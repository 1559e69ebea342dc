package purchase

import (
	"context"
	"fmt"

	"eduledger/internal/apperr"
	"eduledger/internal/db"

	"github.com/jmoiron/sqlx"
)

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, q sqlx.ExtContext, p *Purchase) error {
	err := q.QueryRowxContext(ctx, `
		INSERT INTO purchases (
			student_id, lecturer_id, container_id, lecture_id, package_id, code_id, points, type
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, purchased_at
	`,
		p.StudentID, p.LecturerID, p.ContainerID, p.LectureID, p.PackageID, p.CodeID, p.Points, p.Type,
	).Scan(&p.ID, &p.PurchasedAt)
	if db.IsUniqueViolation(err, "purchases_container_key") {
		return fmt.Errorf("%w: container already purchased", apperr.ErrConflict)
	}
	return db.Classify(err)
}

func (r *repository) GrantLecture(ctx context.Context, q sqlx.ExtContext, userID, lectureID int64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO lecture_access (user_id, lecture_id)
		VALUES ($1, $2)
	`, userID, lectureID)
	if db.IsUniqueViolation(err, "") {
		return fmt.Errorf("%w: lecture already purchased", apperr.ErrConflict)
	}
	return db.Classify(err)
}

func (r *repository) ListForStudent(ctx context.Context, q sqlx.ExtContext, studentID int64) ([]Purchase, error) {
	purchases := []Purchase{}
	err := sqlx.SelectContext(ctx, q, &purchases, `
		SELECT id, student_id, lecturer_id, container_id, lecture_id, package_id, code_id, points, type, purchased_at
		FROM purchases
		WHERE student_id = $1
		ORDER BY purchased_at DESC, id DESC
	`, studentID)
	return purchases, err
}
