package revenue

import "time"

// Filter bounds the rollup to attendances in [From, To).
type Filter struct {
	From       time.Time
	To         time.Time
	LecturerID *int64
	CenterID   *int64
}

type Row struct {
	LecturerID   int64  `db:"lecturer_id" json:"lecturer_id"`
	CenterID     int64  `db:"center_id" json:"center_id"`
	PaymentType  string `db:"payment_type" json:"payment_type"`
	Attendances  int64  `db:"attendances" json:"attendances"`
	Amount       int64  `db:"amount" json:"amount"`
	SessionsSold int64  `db:"sessions_sold" json:"sessions_sold"`
}

type Summary struct {
	From             time.Time `json:"from"`
	To               time.Time `json:"to"`
	Rows             []Row     `json:"rows"`
	TotalAmount      int64     `json:"total_amount"`
	TotalAttendances int64     `json:"total_attendances"`
}
