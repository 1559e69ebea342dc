package purchase

import "time"

type Type string

const (
	TypePoint     Type = "point_purchase"
	TypeContainer Type = "container_purchase"
	TypePackage   Type = "package_purchase"
)

// Purchase is the ledger entry of a settled spend. It is written in the same
// transaction as the wallet debit it records.
type Purchase struct {
	ID          int64     `db:"id" json:"id"`
	StudentID   int64     `db:"student_id" json:"student_id"`
	LecturerID  *int64    `db:"lecturer_id" json:"lecturer_id,omitempty"`
	ContainerID *int64    `db:"container_id" json:"container_id,omitempty"`
	LectureID   *int64    `db:"lecture_id" json:"lecture_id,omitempty"`
	PackageID   *int64    `db:"package_id" json:"package_id,omitempty"`
	CodeID      *int64    `db:"code_id" json:"code_id,omitempty"`
	Points      int64     `db:"points" json:"points"`
	Type        Type      `db:"type" json:"type"`
	PurchasedAt time.Time `db:"purchased_at" json:"purchased_at"`
}

type RedeemCodeRequest struct {
	Token string `json:"token" binding:"required"`
}

type LecturePurchaseRequest struct {
	LecturerID int64 `json:"lecturer_id" binding:"required,gt=0"`
}
