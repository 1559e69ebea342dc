package attendance

import (
	"context"
	"database/sql"
	"errors"

	"eduledger/internal/db"

	"github.com/jmoiron/sqlx"
)

const attendanceColumns = `id, student_id, lesson_id, center_id, lecturer_id, subject_id, level_id,
	attendance_date, payment_type, amount_paid, sessions_paid_for, sessions_remaining, created_at`

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, q sqlx.ExtContext, a *Attendance) error {
	err := q.QueryRowxContext(ctx, `
		INSERT INTO attendances (
			student_id, lesson_id, center_id, lecturer_id, subject_id, level_id,
			attendance_date, payment_type, amount_paid, sessions_paid_for, sessions_remaining
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`,
		a.StudentID, a.LessonID, a.CenterID, a.LecturerID, a.SubjectID, a.LevelID,
		a.AttendanceDate, a.PaymentType, a.AmountPaid, a.SessionsPaidFor, a.SessionsRemaining,
	).Scan(&a.ID, &a.CreatedAt)
	return db.Classify(err)
}

// LatestBank returns the most recent multi-session record of id, or nil when there is
// none. A record with no sessions left means the package is used up.
func (r *repository) LatestBank(ctx context.Context, q sqlx.ExtContext, id Identity) (*Attendance, error) {
	a := &Attendance{}
	err := sqlx.GetContext(ctx, q, a, `
		SELECT `+attendanceColumns+`
		FROM attendances
		WHERE student_id = $1
		  AND lecturer_id = $2
		  AND subject_id = $3
		  AND level_id = $4
		  AND payment_type = 'multi_session'
		ORDER BY attendance_date DESC, id DESC
		LIMIT 1
	`, id.StudentID, id.LecturerID, id.SubjectID, id.LevelID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// LatestPurchase returns the most recent multi-session record of id that sold sessions.
func (r *repository) LatestPurchase(ctx context.Context, q sqlx.ExtContext, id Identity) (*Attendance, error) {
	a := &Attendance{}
	err := sqlx.GetContext(ctx, q, a, `
		SELECT `+attendanceColumns+`
		FROM attendances
		WHERE student_id = $1
		  AND lecturer_id = $2
		  AND subject_id = $3
		  AND level_id = $4
		  AND payment_type = 'multi_session'
		  AND sessions_paid_for > 0
		ORDER BY attendance_date DESC, id DESC
		LIMIT 1
	`, id.StudentID, id.LecturerID, id.SubjectID, id.LevelID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *repository) ListForStudent(ctx context.Context, q sqlx.ExtContext, studentID int64) ([]Attendance, error) {
	list := []Attendance{}
	err := sqlx.SelectContext(ctx, q, &list, `
		SELECT `+attendanceColumns+`
		FROM attendances
		WHERE student_id = $1
		ORDER BY attendance_date DESC, id DESC
	`, studentID)
	return list, err
}
