package model

import (
	"time"

	"github.com/google/uuid"
)

// Warning is one entry in the moderation ledger. The ledger is append-only;
// the live ban state lives on the user row, not here.
type Warning struct {
	ID       int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID   uuid.UUID `json:"user_id" gorm:"type:char(36);index;not null"`
	WarnTime time.Time `json:"warn_time" gorm:"not null;index"`
	Comment  *string   `json:"comment,omitempty" gorm:"size:1024"`
	WarnedBy uuid.UUID `json:"warned_by" gorm:"type:char(36);not null"`
	Banned   bool      `json:"banned" gorm:"default:false"`
}
