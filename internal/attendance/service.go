package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eduledger/internal/apperr"
	"eduledger/internal/catalog"
	"eduledger/internal/db"
	"eduledger/internal/logger"
	"eduledger/internal/metrics"
	"eduledger/internal/pricing"

	"github.com/jmoiron/sqlx"
)

type Service interface {
	Settle(ctx context.Context, req SettleRequest) (*Attendance, error)
	History(ctx context.Context, studentID int64) ([]Attendance, error)
	Bank(ctx context.Context, id Identity) (*BankState, error)
}

type service struct {
	db          *sqlx.DB
	repo        Repository
	catalogRepo catalog.Repository
	pricingRepo pricing.Repository
	now         func() time.Time
}

func NewService(db *sqlx.DB, repo Repository, catalogRepo catalog.Repository, pricingRepo pricing.Repository) Service {
	return &service{
		db:          db,
		repo:        repo,
		catalogRepo: catalogRepo,
		pricingRepo: pricingRepo,
		now:         time.Now,
	}
}

// bankLockKey serializes multi-session settlements of one identity so two concurrent
// attendances can never consume the same banked session.
func bankLockKey(id Identity) int64 {
	return db.LockKey("session_bank", id.StudentID, id.LecturerID, id.SubjectID, id.LevelID)
}

// Settle records one attendance and charges it according to the payment type. Either
// the attendance row exists with its charge afterwards, or nothing changed.
func (s *service) Settle(ctx context.Context, req SettleRequest) (*Attendance, error) {
	if !req.PaymentType.Valid() {
		return nil, apperr.Invalid("payment_type", fmt.Sprintf("unknown payment type %q", req.PaymentType))
	}

	now := s.now().UTC()
	attendedAt := now
	if req.AttendedAt != nil {
		attendedAt = req.AttendedAt.UTC()
		if attendedAt.After(now) {
			return nil, apperr.Invalid("attended_at", "must not be in the future")
		}
	}

	var a *Attendance
	err := db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		lesson, err := s.catalogRepo.GetLesson(ctx, tx, req.LessonID)
		if err != nil {
			return err
		}

		id := Identity{
			StudentID:  req.StudentID,
			LecturerID: lesson.LecturerID,
			SubjectID:  lesson.SubjectID,
			LevelID:    lesson.LevelID,
		}
		key := pricing.Key{
			LecturerID: lesson.LecturerID,
			SubjectID:  lesson.SubjectID,
			LevelID:    lesson.LevelID,
			CenterID:   lesson.CenterID,
		}

		var (
			prior *Attendance
			rule  *pricing.Rule
		)
		switch req.PaymentType {
		case PaymentDaily:
			if rule, err = s.pricingRepo.Resolve(ctx, tx, key); err != nil {
				return err
			}
		case PaymentMultiSession:
			if err := db.AdvisoryLock(ctx, tx, bankLockKey(id)); err != nil {
				return err
			}
			if prior, err = s.repo.LatestBank(ctx, tx, id); err != nil {
				return err
			}
			// The bank is ordered by attendance date, so an older date would draw
			// from a session that a later attendance already consumed.
			if prior != nil && attendedAt.Before(prior.AttendanceDate) {
				return apperr.Invalid("attended_at", fmt.Sprintf(
					"must not precede the latest multi-session attendance on %s",
					prior.AttendanceDate.Format(time.RFC3339)))
			}
			if prior == nil || prior.SessionsRemaining == 0 {
				if rule, err = s.pricingRepo.Resolve(ctx, tx, key); err != nil {
					return err
				}
			}
		}

		charge, err := Plan(prior, rule, req.PaymentType)
		if err != nil {
			return err
		}

		a = &Attendance{
			StudentID:         req.StudentID,
			LessonID:          lesson.ID,
			CenterID:          lesson.CenterID,
			LecturerID:        lesson.LecturerID,
			SubjectID:         lesson.SubjectID,
			LevelID:           lesson.LevelID,
			AttendanceDate:    attendedAt,
			PaymentType:       req.PaymentType,
			AmountPaid:        charge.AmountPaid,
			SessionsPaidFor:   charge.SessionsPaidFor,
			SessionsRemaining: charge.SessionsRemaining,
		}
		return s.repo.Insert(ctx, tx, a)
	})
	if err != nil {
		if errors.Is(err, apperr.ErrTransactionAborted) {
			metrics.RecordAborted("settle_attendance")
		}
		if errors.Is(err, apperr.ErrConflict) {
			return nil, fmt.Errorf("%w: attendance of student %d at lesson %d is already recorded", apperr.ErrConflict, req.StudentID, req.LessonID)
		}
		return nil, err
	}

	metrics.RecordSettlement(string(a.PaymentType), a.AmountPaid)
	logger.Info("attendance settled",
		"attendance_id", a.ID,
		"student_id", a.StudentID,
		"lesson_id", a.LessonID,
		"payment_type", a.PaymentType,
		"amount_paid", a.AmountPaid,
		"sessions_remaining", a.SessionsRemaining,
	)
	return a, nil
}

func (s *service) History(ctx context.Context, studentID int64) ([]Attendance, error) {
	return s.repo.ListForStudent(ctx, s.db, studentID)
}

func (s *service) Bank(ctx context.Context, id Identity) (*BankState, error) {
	state := &BankState{Identity: id}

	open, err := s.repo.LatestBank(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if open == nil || open.SessionsRemaining == 0 {
		return state, nil
	}

	state.SessionsRemaining = open.SessionsRemaining
	state.LastUsed = open
	if state.OpenedBy, err = s.repo.LatestPurchase(ctx, s.db, id); err != nil {
		return nil, err
	}
	return state, nil
}
