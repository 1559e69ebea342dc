package pricing

import "time"

// Rule prices attendance of a lecturer's class for one subject and level. A rule with a
// nil CenterID is the lecturer's global default; a center specific rule overrides it.
type Rule struct {
	ID                int64     `db:"id" json:"id"`
	LecturerID        int64     `db:"lecturer_id" json:"lecturer_id"`
	SubjectID         int64     `db:"subject_id" json:"subject_id"`
	LevelID           int64     `db:"level_id" json:"level_id"`
	CenterID          *int64    `db:"center_id" json:"center_id,omitempty"`
	DailyPrice        int64     `db:"daily_price" json:"daily_price"`
	MultiSessionPrice int64     `db:"multi_session_price" json:"multi_session_price"`
	MultiSessionCount int       `db:"multi_session_count" json:"multi_session_count"`
	Description       string    `db:"description" json:"description"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// Key identifies the class being priced. CenterID is where the lesson takes place.
type Key struct {
	LecturerID int64 `form:"lecturer_id" binding:"required,gt=0"`
	SubjectID  int64 `form:"subject_id" binding:"required,gt=0"`
	LevelID    int64 `form:"level_id" binding:"required,gt=0"`
	CenterID   int64 `form:"center_id" binding:"required,gt=0"`
}

type CreateRuleRequest struct {
	LecturerID        int64  `json:"lecturer_id" binding:"required,gt=0"`
	SubjectID         int64  `json:"subject_id" binding:"required,gt=0"`
	LevelID           int64  `json:"level_id" binding:"required,gt=0"`
	CenterID          *int64 `json:"center_id" binding:"omitempty,gt=0"`
	DailyPrice        int64  `json:"daily_price" binding:"gte=0"`
	MultiSessionPrice int64  `json:"multi_session_price" binding:"gte=0"`
	MultiSessionCount int    `json:"multi_session_count" binding:"required,gte=1"`
	Description       string `json:"description" binding:"max=500"`
}

// UpdateRuleRequest changes the prices of an existing rule. The key of a rule is
// immutable; moving a rule means deleting it and creating another.
type UpdateRuleRequest struct {
	DailyPrice        int64  `json:"daily_price" binding:"gte=0"`
	MultiSessionPrice int64  `json:"multi_session_price" binding:"gte=0"`
	MultiSessionCount int    `json:"multi_session_count" binding:"required,gte=1"`
	Description       string `json:"description" binding:"max=500"`
}

type Filter struct {
	LecturerID *int64
	SubjectID  *int64
	LevelID    *int64
}
