package purchase

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Insert(ctx context.Context, q sqlx.ExtContext, p *Purchase) error
	GrantLecture(ctx context.Context, q sqlx.ExtContext, userID, lectureID int64) error
	ListForStudent(ctx context.Context, q sqlx.ExtContext, studentID int64) ([]Purchase, error)
}
