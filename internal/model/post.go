package model

import (
	"time"

	"github.com/google/uuid"
)

// Post is a reply inside a thread. Author is nil when the account was
// removed; the post itself survives.
type Post struct {
	ID         int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Content    string     `json:"content" gorm:"type:text;not null"`
	Author     *uuid.UUID `json:"author,omitempty" gorm:"type:char(36);index"`
	ThreadID   int64      `json:"thread_id" gorm:"index;not null"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
	Likes      int32      `json:"likes" gorm:"default:0"`
}
