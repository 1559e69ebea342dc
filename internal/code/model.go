package code

import "time"

type Kind string

const (
	KindGeneral  Kind = "general"
	KindSpecific Kind = "specific"
	KindPromo    Kind = "promo"
)

func (k Kind) Valid() bool {
	switch k {
	case KindGeneral, KindSpecific, KindPromo:
		return true
	}
	return false
}

// Code is a single-use voucher worth PointsAmount points. Specific codes credit the
// lecturer balance of LecturerID; general and promo codes credit the general balance.
type Code struct {
	ID           int64      `db:"id" json:"id"`
	Token        string     `db:"token" json:"token"`
	Kind         Kind       `db:"kind" json:"kind"`
	LecturerID   *int64     `db:"lecturer_id" json:"lecturer_id,omitempty"`
	PointsAmount int64      `db:"points_amount" json:"points_amount"`
	Redeemed     bool       `db:"redeemed" json:"redeemed"`
	RedeemedBy   *int64     `db:"redeemed_by" json:"redeemed_by,omitempty"`
	RedeemedAt   *time.Time `db:"redeemed_at" json:"redeemed_at,omitempty"`
	CreatedBy    *int64     `db:"created_by" json:"created_by,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

type IssueRequest struct {
	Kind         Kind   `json:"kind" binding:"required,oneof=general specific promo"`
	PointsAmount int64  `json:"points_amount" binding:"required,gt=0"`
	LecturerID   *int64 `json:"lecturer_id" binding:"omitempty,gt=0"`
	Count        int    `json:"count" binding:"required,gt=0,lte=1000"`
	IssuedBy     int64  `json:"-"`
}

type RedeemRequest struct {
	Token string `json:"token" binding:"required"`
}

type Filter struct {
	Redeemed   *bool
	LecturerID *int64
	Limit      int
	Offset     int
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
	maxIssueCount    = 1000
)
