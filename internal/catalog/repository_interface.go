package catalog

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	GetLesson(ctx context.Context, q sqlx.ExtContext, id int64) (*Lesson, error)
	GetLecture(ctx context.Context, q sqlx.ExtContext, id int64) (*Lecture, error)
	GetContainer(ctx context.Context, q sqlx.ExtContext, id int64) (*Container, error)
	GetPackage(ctx context.Context, q sqlx.ExtContext, id int64) (*Package, error)
	Children(ctx context.Context, q sqlx.ExtContext, id int64) ([]Container, error)
	ParentChain(ctx context.Context, q sqlx.ExtContext, id int64) ([]int64, error)
	IsAncestor(ctx context.Context, q sqlx.ExtContext, candidate, of int64) (bool, error)
	SetParent(ctx context.Context, q sqlx.ExtContext, childID int64, parentID *int64) error
}
