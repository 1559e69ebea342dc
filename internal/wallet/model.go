package wallet

import "time"

// Wallet is the spendable balance owned by a user of any role.
type Wallet struct {
	UserID         int64             `db:"user_id" json:"user_id"`
	GeneralPoints  int64             `db:"general_points" json:"general_points"`
	LecturerPoints []LecturerBalance `db:"-" json:"lecturer_points"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updated_at"`
}

type LecturerBalance struct {
	LecturerID int64 `db:"lecturer_id" json:"lecturer_id"`
	Points     int64 `db:"points" json:"points"`
}

// Target selects which balance of a wallet an operation applies to.
// The zero value is the general balance.
type Target struct {
	LecturerID int64
}

func General() Target { return Target{} }

func Lecturer(lecturerID int64) Target { return Target{LecturerID: lecturerID} }

func (t Target) IsGeneral() bool { return t.LecturerID == 0 }

func (t Target) String() string {
	if t.IsGeneral() {
		return "general"
	}
	return "lecturer"
}

// Balance returns the points held for lecturerID; absence means zero.
func (w *Wallet) Balance(lecturerID int64) int64 {
	for _, lp := range w.LecturerPoints {
		if lp.LecturerID == lecturerID {
			return lp.Points
		}
	}
	return 0
}
