package model

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one entry in the site-wide chat feed. AuthorName is filled
// by a join when reading the feed and is not a column.
type ChatMessage struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Added      time.Time `json:"added" gorm:"not null;index"`
	Author     uuid.UUID `json:"author" gorm:"type:char(36);index;not null"`
	AuthorName string    `json:"author_name" gorm:"->;-:migration"`
	Content    string    `json:"content" gorm:"size:1024;not null"`
}
