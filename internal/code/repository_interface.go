package code

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Insert(ctx context.Context, q sqlx.ExtContext, c *Code) error
	SetToken(ctx context.Context, q sqlx.ExtContext, id int64, token string) error
	MarkRedeemed(ctx context.Context, q sqlx.ExtContext, token string, userID int64) (*Code, error)
	DeleteUnredeemed(ctx context.Context, q sqlx.ExtContext, token string) (bool, error)
	Exists(ctx context.Context, q sqlx.ExtContext, token string) (bool, error)
	List(ctx context.Context, q sqlx.ExtContext, f Filter) ([]Code, error)
}
