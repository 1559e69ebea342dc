package attendance

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"eduledger/internal/apperr"
	"eduledger/internal/catalog"
	"eduledger/internal/pricing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct{ mock.Mock }

func (m *MockRepository) Insert(ctx context.Context, q sqlx.ExtContext, a *Attendance) error {
	return m.Called(ctx, q, a).Error(0)
}

func (m *MockRepository) LatestBank(ctx context.Context, q sqlx.ExtContext, id Identity) (*Attendance, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Attendance), args.Error(1)
}

func (m *MockRepository) LatestPurchase(ctx context.Context, q sqlx.ExtContext, id Identity) (*Attendance, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Attendance), args.Error(1)
}

func (m *MockRepository) ListForStudent(ctx context.Context, q sqlx.ExtContext, studentID int64) ([]Attendance, error) {
	args := m.Called(ctx, q, studentID)
	return args.Get(0).([]Attendance), args.Error(1)
}

// memRepository keeps attendances in memory so whole sequences of settlements can be
// replayed against the service.
type memRepository struct {
	rows []Attendance
}

func (r *memRepository) Insert(_ context.Context, _ sqlx.ExtContext, a *Attendance) error {
	for _, row := range r.rows {
		if row.StudentID == a.StudentID && row.LessonID == a.LessonID {
			return fmt.Errorf("%w: duplicate attendances_student_lesson_key", apperr.ErrConflict)
		}
	}
	a.ID = int64(len(r.rows) + 1)
	r.rows = append(r.rows, *a)
	return nil
}

// LatestBank mirrors the SQL ordering: attendance_date DESC, then id DESC.
func (r *memRepository) LatestBank(_ context.Context, _ sqlx.ExtContext, id Identity) (*Attendance, error) {
	var latest *Attendance
	for i := range r.rows {
		row := &r.rows[i]
		if row.StudentID != id.StudentID || row.LecturerID != id.LecturerID ||
			row.SubjectID != id.SubjectID || row.LevelID != id.LevelID ||
			row.PaymentType != PaymentMultiSession {
			continue
		}
		if latest == nil || row.AttendanceDate.After(latest.AttendanceDate) ||
			(row.AttendanceDate.Equal(latest.AttendanceDate) && row.ID > latest.ID) {
			latest = row
		}
	}
	if latest == nil {
		return nil, nil
	}
	found := *latest
	return &found, nil
}

func (r *memRepository) LatestPurchase(context.Context, sqlx.ExtContext, Identity) (*Attendance, error) {
	return nil, nil
}

func (r *memRepository) ListForStudent(context.Context, sqlx.ExtContext, int64) ([]Attendance, error) {
	return r.rows, nil
}

type lessonStore struct {
	catalog.Repository
	lessons map[int64]catalog.Lesson
}

func (s lessonStore) GetLesson(_ context.Context, _ sqlx.ExtContext, id int64) (*catalog.Lesson, error) {
	l, ok := s.lessons[id]
	if !ok {
		return nil, fmt.Errorf("lesson %d: %w", id, apperr.ErrNotFound)
	}
	return &l, nil
}

type ruleStore struct {
	pricing.Repository
	rules    []pricing.Rule
	resolves int
}

func (s *ruleStore) Resolve(_ context.Context, _ sqlx.ExtContext, key pricing.Key) (*pricing.Rule, error) {
	s.resolves++
	var global *pricing.Rule
	for i := range s.rules {
		r := &s.rules[i]
		if r.LecturerID != key.LecturerID || r.SubjectID != key.SubjectID || r.LevelID != key.LevelID {
			continue
		}
		if r.CenterID != nil && *r.CenterID == key.CenterID {
			return r, nil
		}
		if r.CenterID == nil {
			global = r
		}
	}
	if global == nil {
		return nil, fmt.Errorf("no pricing configured: %w", apperr.ErrNotFound)
	}
	return global, nil
}

var lockQuery = regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")

func newTestService(t *testing.T, repo Repository, lessons lessonStore, rules *ruleStore) (*service, sqlmock.Sqlmock) {
	conn, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	svc := NewService(sqlx.NewDb(conn, "sqlmock"), repo, lessons, rules).(*service)
	base := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	calls := 0
	svc.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * 24 * time.Hour)
	}
	return svc, sqlMock
}

func weeklyLessons(n int) lessonStore {
	lessons := make(map[int64]catalog.Lesson, n)
	for i := 1; i <= n; i++ {
		lessons[int64(i)] = catalog.Lesson{ID: int64(i), LecturerID: 7, SubjectID: 2, LevelID: 3, CenterID: 4}
	}
	return lessonStore{lessons: lessons}
}

func TestSettle_RecurringClassScenario(t *testing.T) {
	repo := &memRepository{}
	rules := &ruleStore{rules: []pricing.Rule{{LecturerID: 7, SubjectID: 2, LevelID: 3, DailyPrice: 50, MultiSessionPrice: 180, MultiSessionCount: 4}}}
	svc, sqlMock := newTestService(t, repo, weeklyLessons(5), rules)

	want := []struct {
		amount    int64
		remaining int
	}{{180, 3}, {0, 2}, {0, 1}, {0, 0}, {180, 3}}

	for i, w := range want {
		sqlMock.ExpectBegin()
		sqlMock.ExpectExec(lockQuery).WillReturnResult(sqlmock.NewResult(0, 0))
		sqlMock.ExpectCommit()

		a, err := svc.Settle(context.Background(), SettleRequest{StudentID: 1, LessonID: int64(i + 1), PaymentType: PaymentMultiSession})
		require.NoError(t, err, "attendance %d", i+1)
		assert.Equal(t, w.amount, a.AmountPaid, "attendance %d", i+1)
		assert.Equal(t, w.remaining, a.SessionsRemaining, "attendance %d", i+1)
	}

	assert.Equal(t, 2, rules.resolves, "pricing is only consulted when a bank is opened")
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestSettle_ReopensEveryUsedUpPackage(t *testing.T) {
	repo := &memRepository{}
	rules := &ruleStore{rules: []pricing.Rule{{LecturerID: 7, SubjectID: 2, LevelID: 3, MultiSessionPrice: 180, MultiSessionCount: 4}}}
	svc, sqlMock := newTestService(t, repo, weeklyLessons(9), rules)

	var paid int64
	remaining := make([]int, 0, 9)
	for i := 1; i <= 9; i++ {
		sqlMock.ExpectBegin()
		sqlMock.ExpectExec(lockQuery).WillReturnResult(sqlmock.NewResult(0, 0))
		sqlMock.ExpectCommit()

		a, err := svc.Settle(context.Background(), SettleRequest{StudentID: 1, LessonID: int64(i), PaymentType: PaymentMultiSession})
		require.NoError(t, err, "attendance %d", i)
		paid += a.AmountPaid
		remaining = append(remaining, a.SessionsRemaining)
	}

	assert.Equal(t, []int{3, 2, 1, 0, 3, 2, 1, 0, 3}, remaining)
	assert.Equal(t, int64(3*180), paid)
	assert.Equal(t, 3, rules.resolves)
}

func TestSettle_RejectsFutureDate(t *testing.T) {
	repo := &memRepository{}
	svc, sqlMock := newTestService(t, repo, weeklyLessons(1), &ruleStore{})
	future := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	_, err := svc.Settle(context.Background(), SettleRequest{StudentID: 1, LessonID: 1, PaymentType: PaymentMultiSession, AttendedAt: &future})
	assert.True(t, apperr.IsValidation(err))
	assert.Contains(t, err.Error(), "future")
	assert.Empty(t, repo.rows)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestSettle_RejectsBackdatedMultiSession(t *testing.T) {
	repo := &memRepository{}
	rules := &ruleStore{rules: []pricing.Rule{{LecturerID: 7, SubjectID: 2, LevelID: 3, MultiSessionPrice: 180, MultiSessionCount: 4}}}
	svc, sqlMock := newTestService(t, repo, weeklyLessons(3), rules)
	backdated := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(lockQuery).WillReturnResult(sqlmock.NewResult(0, 0))
	sqlMock.ExpectCommit()
	first, err := svc.Settle(context.Background(), SettleRequest{StudentID: 1, LessonID: 1, PaymentType: PaymentMultiSession})
	require.NoError(t, err)
	require.Equal(t, 3, first.SessionsRemaining)

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(lockQuery).WillReturnResult(sqlmock.NewResult(0, 0))
	sqlMock.ExpectRollback()
	_, err = svc.Settle(context.Background(), SettleRequest{StudentID: 1, LessonID: 2, PaymentType: PaymentMultiSession, AttendedAt: &backdated})
	assert.True(t, apperr.IsValidation(err))
	assert.Contains(t, err.Error(), "must not precede")

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(lockQuery).WillReturnResult(sqlmock.NewResult(0, 0))
	sqlMock.ExpectCommit()
	third, err := svc.Settle(context.Background(), SettleRequest{StudentID: 1, LessonID: 3, PaymentType: PaymentMultiSession})
	require.NoError(t, err)
	assert.Equal(t, 2, third.SessionsRemaining)
	assert.Len(t, repo.rows, 2)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestSettle_BackdatedDailyIsAllowed(t *testing.T) {
	rules := &ruleStore{rules: []pricing.Rule{{LecturerID: 7, SubjectID: 2, LevelID: 3, DailyPrice: 50, MultiSessionCount: 1}}}
	svc, sqlMock := newTestService(t, &memRepository{}, weeklyLessons(1), rules)
	backdated := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)

	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()
	a, err := svc.Settle(context.Background(), SettleRequest{StudentID: 1, LessonID: 1, PaymentType: PaymentDaily, AttendedAt: &backdated})
	require.NoError(t, err)
	assert.True(t, a.AttendanceDate.Equal(backdated))
}

func TestSettle_CenterOverrideAndGlobalFallback(t *testing.T) {
	center := int64(4)
	rules := &ruleStore{rules: []pricing.Rule{
		{LecturerID: 7, SubjectID: 2, LevelID: 3, DailyPrice: 50, MultiSessionCount: 1},
		{LecturerID: 7, SubjectID: 2, LevelID: 3, CenterID: &center, DailyPrice: 65, MultiSessionCount: 1},
	}}
	lessons := lessonStore{lessons: map[int64]catalog.Lesson{
		1: {ID: 1, LecturerID: 7, SubjectID: 2, LevelID: 3, CenterID: 4},
		2: {ID: 2, LecturerID: 7, SubjectID: 2, LevelID: 3, CenterID: 9},
	}}
	svc, sqlMock := newTestService(t, &memRepository{}, lessons, rules)

	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()
	a, err := svc.Settle(context.Background(), SettleRequest{StudentID: 1, LessonID: 1, PaymentType: PaymentDaily})
	require.NoError(t, err)
	assert.Equal(t, int64(65), a.AmountPaid)

	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()
	a, err = svc.Settle(context.Background(), SettleRequest{StudentID: 1, LessonID: 2, PaymentType: PaymentDaily})
	require.NoError(t, err)
	assert.Equal(t, int64(50), a.AmountPaid)
}

func TestSettle_UnpaidSkipsPricing(t *testing.T) {
	rules := &ruleStore{}
	svc, sqlMock := newTestService(t, &memRepository{}, weeklyLessons(1), rules)

	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()

	a, err := svc.Settle(context.Background(), SettleRequest{StudentID: 1, LessonID: 1, PaymentType: PaymentUnpaid})
	require.NoError(t, err)
	assert.Equal(t, int64(0), a.AmountPaid)
	assert.Equal(t, 0, rules.resolves)
}

func TestSettle_NoPricingRollsBack(t *testing.T) {
	repo := &memRepository{}
	svc, sqlMock := newTestService(t, repo, weeklyLessons(1), &ruleStore{})

	sqlMock.ExpectBegin()
	sqlMock.ExpectRollback()

	_, err := svc.Settle(context.Background(), SettleRequest{StudentID: 1, LessonID: 1, PaymentType: PaymentDaily})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Contains(t, err.Error(), "no pricing configured")
	assert.Empty(t, repo.rows)
}

func TestSettle_UnknownLesson(t *testing.T) {
	svc, sqlMock := newTestService(t, &memRepository{}, weeklyLessons(1), &ruleStore{})

	sqlMock.ExpectBegin()
	sqlMock.ExpectRollback()

	_, err := svc.Settle(context.Background(), SettleRequest{StudentID: 1, LessonID: 42, PaymentType: PaymentUnpaid})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSettle_DuplicateAttendance(t *testing.T) {
	svc, sqlMock := newTestService(t, &memRepository{}, weeklyLessons(1), &ruleStore{})

	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()
	sqlMock.ExpectBegin()
	sqlMock.ExpectRollback()

	_, err := svc.Settle(context.Background(), SettleRequest{StudentID: 1, LessonID: 1, PaymentType: PaymentUnpaid})
	require.NoError(t, err)

	_, err = svc.Settle(context.Background(), SettleRequest{StudentID: 1, LessonID: 1, PaymentType: PaymentUnpaid})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Contains(t, err.Error(), "already recorded")
}

func TestSettle_InvalidPaymentType(t *testing.T) {
	svc, _ := newTestService(t, &memRepository{}, weeklyLessons(1), &ruleStore{})

	_, err := svc.Settle(context.Background(), SettleRequest{StudentID: 1, LessonID: 1, PaymentType: "weekly"})
	assert.True(t, apperr.IsValidation(err))
}

func TestSettle_LockFailureRollsBack(t *testing.T) {
	svc, sqlMock := newTestService(t, &memRepository{}, weeklyLessons(1), &ruleStore{})

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(lockQuery).WillReturnError(errors.New("connection reset"))
	sqlMock.ExpectRollback()

	_, err := svc.Settle(context.Background(), SettleRequest{StudentID: 1, LessonID: 1, PaymentType: PaymentMultiSession})
	require.Error(t, err)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestSettle_UsesProvidedDate(t *testing.T) {
	repo := new(MockRepository)
	svc, sqlMock := newTestService(t, repo, weeklyLessons(1), &ruleStore{})
	attended := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)

	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()
	repo.On("Insert", mock.Anything, mock.Anything, mock.MatchedBy(func(a *Attendance) bool {
		return a.AttendanceDate.Equal(attended) && a.CenterID == 4 && a.LecturerID == 7
	})).Return(nil)

	_, err := svc.Settle(context.Background(), SettleRequest{StudentID: 1, LessonID: 1, PaymentType: PaymentUnpaid, AttendedAt: &attended})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestBank(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(t, repo, weeklyLessons(1), &ruleStore{})
	id := Identity{StudentID: 1, LecturerID: 7, SubjectID: 2, LevelID: 3}

	repo.On("LatestBank", mock.Anything, mock.Anything, id).Return(&Attendance{ID: 3, SessionsRemaining: 2}, nil)
	repo.On("LatestPurchase", mock.Anything, mock.Anything, id).Return(&Attendance{ID: 2, SessionsPaidFor: 4}, nil)

	state, err := svc.Bank(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, state.SessionsRemaining)
	assert.Equal(t, int64(2), state.OpenedBy.ID)
}

func TestBank_UsedUpPackageIsEmpty(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(t, repo, weeklyLessons(1), &ruleStore{})
	id := Identity{StudentID: 1, LecturerID: 7, SubjectID: 2, LevelID: 3}

	repo.On("LatestBank", mock.Anything, mock.Anything, id).Return(&Attendance{ID: 5, SessionsRemaining: 0}, nil)

	state, err := svc.Bank(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, state.SessionsRemaining)
	assert.Nil(t, state.LastUsed)
	repo.AssertNotCalled(t, "LatestPurchase", mock.Anything, mock.Anything, mock.Anything)
}

func TestBank_Empty(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(t, repo, weeklyLessons(1), &ruleStore{})
	id := Identity{StudentID: 1, LecturerID: 7, SubjectID: 2, LevelID: 3}

	repo.On("LatestBank", mock.Anything, mock.Anything, id).Return(nil, nil)

	state, err := svc.Bank(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, state.SessionsRemaining)
	assert.Nil(t, state.OpenedBy)
	repo.AssertNotCalled(t, "LatestPurchase", mock.Anything, mock.Anything, mock.Anything)
}
