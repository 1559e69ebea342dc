package attendance

import "time"

type PaymentType string

const (
	PaymentDaily        PaymentType = "daily"
	PaymentMultiSession PaymentType = "multi_session"
	PaymentUnpaid       PaymentType = "unpaid"
)

func (p PaymentType) Valid() bool {
	switch p {
	case PaymentDaily, PaymentMultiSession, PaymentUnpaid:
		return true
	}
	return false
}

// Attendance is an immutable record of a student attending one lesson instance and
// what was charged for it. Multi-session records also carry the state of the bank.
type Attendance struct {
	ID                int64       `db:"id" json:"id"`
	StudentID         int64       `db:"student_id" json:"student_id"`
	LessonID          int64       `db:"lesson_id" json:"lesson_id"`
	CenterID          int64       `db:"center_id" json:"center_id"`
	LecturerID        int64       `db:"lecturer_id" json:"lecturer_id"`
	SubjectID         int64       `db:"subject_id" json:"subject_id"`
	LevelID           int64       `db:"level_id" json:"level_id"`
	AttendanceDate    time.Time   `db:"attendance_date" json:"attendance_date"`
	PaymentType       PaymentType `db:"payment_type" json:"payment_type"`
	AmountPaid        int64       `db:"amount_paid" json:"amount_paid"`
	SessionsPaidFor   int         `db:"sessions_paid_for" json:"sessions_paid_for"`
	SessionsRemaining int         `db:"sessions_remaining" json:"sessions_remaining"`
	CreatedAt         time.Time   `db:"created_at" json:"created_at"`
}

// Identity is the recurring class a session bank belongs to. Lesson instances of the
// same class share it, regardless of center.
type Identity struct {
	StudentID  int64 `form:"student_id" binding:"required,gt=0"`
	LecturerID int64 `form:"lecturer_id" binding:"required,gt=0"`
	SubjectID  int64 `form:"subject_id" binding:"required,gt=0"`
	LevelID    int64 `form:"level_id" binding:"required,gt=0"`
}

type SettleRequest struct {
	StudentID   int64       `json:"student_id" binding:"required,gt=0"`
	LessonID    int64       `json:"lesson_id" binding:"required,gt=0"`
	PaymentType PaymentType `json:"payment_type" binding:"required,oneof=daily multi_session unpaid"`
	AttendedAt  *time.Time  `json:"attended_at"`
}

// Charge is what a single attendance costs and how it moves the session bank.
type Charge struct {
	AmountPaid        int64
	SessionsPaidFor   int
	SessionsRemaining int
}

// BankState summarises the open session bank of an identity.
type BankState struct {
	Identity          Identity    `json:"-"`
	SessionsRemaining int         `json:"sessions_remaining"`
	OpenedBy          *Attendance `json:"opened_by,omitempty"`
	LastUsed          *Attendance `json:"last_used,omitempty"`
}
