package wallet

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Repository mutations take the caller's transaction so that every balance change
// commits together with the ledger row describing it.
type Repository interface {
	Create(ctx context.Context, q sqlx.ExtContext, userID int64) error
	Get(ctx context.Context, q sqlx.ExtContext, userID int64) (*Wallet, error)
	Balance(ctx context.Context, q sqlx.ExtContext, userID int64, target Target) (int64, error)
	Credit(ctx context.Context, q sqlx.ExtContext, userID int64, target Target, amount int64) (int64, error)
	Debit(ctx context.Context, q sqlx.ExtContext, userID int64, target Target, amount int64) (int64, error)
}
