package attendance

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Insert(ctx context.Context, q sqlx.ExtContext, a *Attendance) error
	LatestBank(ctx context.Context, q sqlx.ExtContext, id Identity) (*Attendance, error)
	LatestPurchase(ctx context.Context, q sqlx.ExtContext, id Identity) (*Attendance, error)
	ListForStudent(ctx context.Context, q sqlx.ExtContext, studentID int64) ([]Attendance, error)
}
