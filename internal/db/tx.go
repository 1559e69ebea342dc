package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"

	"eduledger/internal/apperr"

	"github.com/jackc/pgerrcode"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// WithTx runs fn inside a single transaction. The transaction is rolled back when fn
// fails and storage errors are translated into the apperr taxonomy. Conflicting commits
// surface as apperr.ErrTransactionAborted and are never retried here.
func WithTx(ctx context.Context, conn *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return Classify(err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return Classify(err)
	}

	if err := tx.Commit(); err != nil {
		return Classify(err)
	}
	return nil
}

// WithSnapshot runs fn in a read-only REPEATABLE READ transaction so every read in fn
// sees the same committed state.
func WithSnapshot(ctx context.Context, conn *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := conn.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return Classify(err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return Classify(err)
	}
	return Classify(tx.Commit())
}

// Classify maps PostgreSQL error codes onto apperr sentinels. Errors that did not come
// from the driver are returned unchanged.
func Classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case pgerrcode.UniqueViolation:
		return fmt.Errorf("%w: duplicate %s", apperr.ErrConflict, pqErr.Constraint)
	case pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%w: %s", apperr.ErrNotFound, pqErr.Detail)
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
		return fmt.Errorf("%w: %s", apperr.ErrTransactionAborted, pqErr.Message)
	case pgerrcode.CheckViolation:
		return fmt.Errorf("check %s violated: %w", pqErr.Constraint, err)
	}
	return err
}

// IsUniqueViolation reports whether err is a unique violation of the named constraint.
// An empty constraint matches any unique violation.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != pgerrcode.UniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// LockKey folds an identity tuple into the int64 keyspace of PostgreSQL advisory locks.
func LockKey(scope string, parts ...int64) int64 {
	h := fnv.New64a()
	h.Write([]byte(scope))
	for _, p := range parts {
		h.Write([]byte{':'})
		h.Write([]byte(strconv.FormatInt(p, 10)))
	}
	return int64(h.Sum64())
}

// AdvisoryLock takes a transaction scoped advisory lock; it is released on commit or rollback.
func AdvisoryLock(ctx context.Context, tx sqlx.ExecerContext, key int64) error {
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, key)
	return err
}
