package model

import (
	"time"

	"github.com/google/uuid"
)

// Thread is a discussion topic inside a section.
type Thread struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title     string    `json:"title" gorm:"size:255;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Author    uuid.UUID `json:"author" gorm:"type:char(36);index;not null"`
	SectionID int64     `json:"section_id" gorm:"index;not null"`
	Locked    bool      `json:"locked" gorm:"default:false"`
	Sticky    bool      `json:"sticky" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// Hashtag tags a thread. Rows are written on thread creation only; there is
// no search surface over them.
type Hashtag struct {
	ID       int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Tag      string `json:"tag" gorm:"size:64;not null;index"`
	ThreadID int64  `json:"thread_id" gorm:"index;not null"`
}
