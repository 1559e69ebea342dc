package pricing

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Resolve(ctx context.Context, q sqlx.ExtContext, key Key) (*Rule, error)
	Get(ctx context.Context, q sqlx.ExtContext, id int64) (*Rule, error)
	Create(ctx context.Context, q sqlx.ExtContext, r *Rule) error
	Update(ctx context.Context, q sqlx.ExtContext, id int64, req UpdateRuleRequest) (*Rule, error)
	Delete(ctx context.Context, q sqlx.ExtContext, id int64) error
	List(ctx context.Context, q sqlx.ExtContext, f Filter) ([]Rule, error)
}
