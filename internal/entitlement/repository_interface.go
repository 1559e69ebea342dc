package entitlement

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	PurchasedContainers(ctx context.Context, q sqlx.ExtContext, studentID int64) (map[int64]struct{}, error)
	HasLectureGrant(ctx context.Context, q sqlx.ExtContext, studentID, lectureID int64) (bool, error)
}
