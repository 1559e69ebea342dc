package entitlement

import (
	"context"

	"eduledger/internal/db"

	"github.com/jmoiron/sqlx"
)

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) PurchasedContainers(ctx context.Context, q sqlx.ExtContext, studentID int64) (map[int64]struct{}, error) {
	var ids []int64
	err := sqlx.SelectContext(ctx, q, &ids, `
		SELECT DISTINCT container_id
		FROM purchases
		WHERE student_id = $1
		  AND type = 'container_purchase'
		  AND container_id IS NOT NULL
	`, studentID)
	if err != nil {
		return nil, err
	}

	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (r *repository) HasLectureGrant(ctx context.Context, q sqlx.ExtContext, studentID, lectureID int64) (bool, error) {
	return db.Exists(ctx, q, `
		SELECT EXISTS(SELECT 1 FROM lecture_access WHERE user_id = $1 AND lecture_id = $2)
	`, studentID, lectureID)
}
