package purchase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eduledger/internal/apperr"
	"eduledger/internal/catalog"
	"eduledger/internal/code"
	"eduledger/internal/db"
	"eduledger/internal/logger"
	"eduledger/internal/metrics"
	"eduledger/internal/notify"
	"eduledger/internal/user"
	"eduledger/internal/wallet"

	"github.com/jmoiron/sqlx"
)

const notifyTimeout = 2 * time.Second

// Service is the settlement engine. Each operation runs in exactly one transaction:
// the balance change, its ledger entry and any access grant commit together or not at all.
type Service interface {
	RedeemCode(ctx context.Context, userID int64, token string) (*code.Code, error)
	SpendLecturerPoints(ctx context.Context, userID, lecturerID, lectureID int64) (*Purchase, error)
	SpendOnContainer(ctx context.Context, userID, containerID int64) (*Purchase, error)
	SpendOnPackage(ctx context.Context, userID, packageID int64) (*Purchase, error)
	ListForStudent(ctx context.Context, userID int64) ([]Purchase, error)
}

type service struct {
	db          *sqlx.DB
	repo        Repository
	codes       code.Service
	walletRepo  wallet.Repository
	catalogRepo catalog.Repository
	userRepo    user.Repository
	publisher   notify.Publisher
}

func NewService(
	db *sqlx.DB,
	repo Repository,
	codes code.Service,
	walletRepo wallet.Repository,
	catalogRepo catalog.Repository,
	userRepo user.Repository,
	publisher notify.Publisher,
) Service {
	return &service{
		db:          db,
		repo:        repo,
		codes:       codes,
		walletRepo:  walletRepo,
		catalogRepo: catalogRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// RedeemCode converts a code into wallet points. No purchase row is written: nothing was
// debited, and the code row itself records who redeemed it and when.
func (s *service) RedeemCode(ctx context.Context, userID int64, token string) (*code.Code, error) {
	var c *code.Code
	err := db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		c, err = s.codes.RedeemTx(ctx, tx, token, userID)
		return err
	})
	if err != nil {
		s.recordFailure("redeem_code", err)
		return nil, err
	}

	metrics.RecordRedemption(string(c.Kind))
	logger.Info("code redeemed", "code_id", c.ID, "user_id", userID, "kind", c.Kind, "points", c.PointsAmount)

	balance := "general"
	if c.Kind == code.KindSpecific {
		balance = "lecturer"
	}
	s.notify(ctx, userID, func(u *user.User) notify.Event {
		return notify.CodeRedeemed(u.ID, u.Email, u.Name, c.PointsAmount, balance)
	})
	return c, nil
}

// SpendLecturerPoints buys a single lecture with the student's balance for the lecturer
// who owns it.
func (s *service) SpendLecturerPoints(ctx context.Context, userID, lecturerID, lectureID int64) (*Purchase, error) {
	var (
		p     *Purchase
		title string
	)
	err := db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		lecture, err := s.catalogRepo.GetLecture(ctx, tx, lectureID)
		if err != nil {
			return err
		}
		if lecture.LecturerID != lecturerID {
			return apperr.Invalid("lecturer_id", fmt.Sprintf("lecture %d is not taught by lecturer %d", lectureID, lecturerID))
		}
		title = lecture.Title

		if err := s.debit(ctx, tx, userID, wallet.Lecturer(lecturerID), lecture.Price); err != nil {
			return err
		}
		if err := s.repo.GrantLecture(ctx, tx, userID, lectureID); err != nil {
			return err
		}

		p = &Purchase{
			StudentID:  userID,
			LecturerID: &lecturerID,
			LectureID:  &lectureID,
			Points:     lecture.Price,
			Type:       TypePoint,
		}
		return s.repo.Insert(ctx, tx, p)
	})
	if err != nil {
		s.recordFailure("spend_lecturer_points", err)
		return nil, err
	}

	s.settled(ctx, p, title)
	return p, nil
}

// SpendOnContainer buys a container with the balance for its owning lecturer. Access
// then extends to everything below the container.
func (s *service) SpendOnContainer(ctx context.Context, userID, containerID int64) (*Purchase, error) {
	var (
		p     *Purchase
		title string
	)
	err := db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		container, err := s.catalogRepo.GetContainer(ctx, tx, containerID)
		if err != nil {
			return err
		}
		title = container.Title

		if err := s.debit(ctx, tx, userID, wallet.Lecturer(container.LecturerID), container.Price); err != nil {
			return err
		}

		lecturerID := container.LecturerID
		p = &Purchase{
			StudentID:   userID,
			LecturerID:  &lecturerID,
			ContainerID: &containerID,
			Points:      container.Price,
			Type:        TypeContainer,
		}
		return s.repo.Insert(ctx, tx, p)
	})
	if err != nil {
		s.recordFailure("spend_on_container", err)
		return nil, err
	}

	s.settled(ctx, p, title)
	return p, nil
}

// SpendOnPackage pays for a package from the general balance and fans its grants out
// into lecturer balances.
func (s *service) SpendOnPackage(ctx context.Context, userID, packageID int64) (*Purchase, error) {
	var (
		p    *Purchase
		name string
	)
	err := db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		pkg, err := s.catalogRepo.GetPackage(ctx, tx, packageID)
		if err != nil {
			return err
		}
		name = pkg.Name

		if err := s.debit(ctx, tx, userID, wallet.General(), pkg.Price); err != nil {
			return err
		}
		for _, g := range pkg.Grants {
			if _, err := s.walletRepo.Credit(ctx, tx, userID, wallet.Lecturer(g.LecturerID), g.Points); err != nil {
				return fmt.Errorf("grant for lecturer %d: %w", g.LecturerID, err)
			}
		}

		p = &Purchase{
			StudentID: userID,
			PackageID: &packageID,
			Points:    pkg.Price,
			Type:      TypePackage,
		}
		return s.repo.Insert(ctx, tx, p)
	})
	if err != nil {
		s.recordFailure("spend_on_package", err)
		return nil, err
	}

	s.settled(ctx, p, name)
	return p, nil
}

func (s *service) ListForStudent(ctx context.Context, userID int64) ([]Purchase, error) {
	return s.repo.ListForStudent(ctx, s.db, userID)
}

// debit skips free items: a zero price moves no points but is still recorded.
func (s *service) debit(ctx context.Context, tx *sqlx.Tx, userID int64, target wallet.Target, amount int64) error {
	if amount == 0 {
		return nil
	}
	_, err := s.walletRepo.Debit(ctx, tx, userID, target, amount)
	return err
}

func (s *service) settled(ctx context.Context, p *Purchase, item string) {
	metrics.RecordPurchase(string(p.Type), p.Points)
	logger.Info("purchase settled", "purchase_id", p.ID, "student_id", p.StudentID, "type", p.Type, "points", p.Points)

	s.notify(ctx, p.StudentID, func(u *user.User) notify.Event {
		return notify.PurchaseSettled(u.ID, u.Email, u.Name, item, p.Points)
	})
}

func (s *service) recordFailure(operation string, err error) {
	if errors.Is(err, apperr.ErrTransactionAborted) {
		metrics.RecordAborted(operation)
		logger.Warn("settlement aborted by concurrent write", "operation", operation, "error", err)
	}
}

// notify runs after commit. Delivery problems are logged and never reach the caller.
func (s *service) notify(ctx context.Context, userID int64, build func(u *user.User) notify.Event) {
	if s.publisher == nil || s.userRepo == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		logger.Warn("notification skipped, user lookup failed", "user_id", userID, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, build(u)); err != nil {
		logger.Warn("notification not queued", "user_id", userID, "error", err)
	}
}
