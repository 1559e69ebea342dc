package revenue

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Rollup(ctx context.Context, q sqlx.ExtContext, f Filter) ([]Row, error)
}
