package catalog

import "time"

// Lesson is one scheduled instance of a class. Recurring classes produce a new
// lesson row per slot, all sharing the same lecturer, subject and level.
type Lesson struct {
	ID         int64     `db:"id" json:"id"`
	LecturerID int64     `db:"lecturer_id" json:"lecturer_id"`
	SubjectID  int64     `db:"subject_id" json:"subject_id"`
	LevelID    int64     `db:"level_id" json:"level_id"`
	CenterID   int64     `db:"center_id" json:"center_id"`
	StartsAt   time.Time `db:"starts_at" json:"starts_at"`
}

type Lecture struct {
	ID          int64  `db:"id" json:"id"`
	LecturerID  int64  `db:"lecturer_id" json:"lecturer_id"`
	ContainerID *int64 `db:"container_id" json:"container_id,omitempty"`
	Title       string `db:"title" json:"title"`
	Price       int64  `db:"price" json:"price"`
}

// Container is a node of the content tree. Its children are the containers whose
// ParentID points at it.
type Container struct {
	ID         int64     `db:"id" json:"id"`
	ParentID   *int64    `db:"parent_id" json:"parent_id,omitempty"`
	LecturerID int64     `db:"lecturer_id" json:"lecturer_id"`
	Title      string    `db:"title" json:"title"`
	Price      int64     `db:"price" json:"price"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type Package struct {
	ID     int64          `db:"id" json:"id"`
	Name   string         `db:"name" json:"name"`
	Price  int64          `db:"price" json:"price"`
	Grants []PackageGrant `db:"-" json:"grants"`
}

// PackageGrant is the lecturer specific credit a package purchase fans out into.
type PackageGrant struct {
	LecturerID int64 `db:"lecturer_id" json:"lecturer_id"`
	Points     int64 `db:"points" json:"points"`
}
