package model

import (
	"time"

	"github.com/google/uuid"
)

// PrivateMessage is a direct message between two users. Author is nil when
// the sending account was removed.
type PrivateMessage struct {
	ID        int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Author    *uuid.UUID `json:"author,omitempty" gorm:"type:char(36);index"`
	Receiver  uuid.UUID  `json:"receiver" gorm:"type:char(36);index;not null"`
	Content   string     `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time  `json:"created_at"`
}
