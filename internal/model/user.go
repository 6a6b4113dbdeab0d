package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the forum permission tier of a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleMod   Role = "mod"
	RoleUser  Role = "user"
)

// User represents a registered forum account.
type User struct {
	ID                uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Name              string     `json:"name" gorm:"uniqueIndex;size:255;not null"`
	Email             string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash      string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role              Role       `json:"role" gorm:"size:16;not null;default:'user';index"`
	Verified          bool       `json:"verified" gorm:"default:false"`
	VerificationToken *string    `json:"-" gorm:"size:64;index"`
	TokenExpiresAt    *time.Time `json:"-"`
	ResetToken        *string    `json:"-" gorm:"size:64;index"`
	ResetExpiresAt    *time.Time `json:"-"`
	Description       *string    `json:"description,omitempty" gorm:"size:1024"`
	Avatar            *string    `json:"avatar,omitempty" gorm:"size:512"`
	Facebook          *string    `json:"facebook,omitempty" gorm:"size:255"`
	XID               *string    `json:"x_id,omitempty" gorm:"size:255"`
	BannedUntil       *time.Time `json:"banned_until,omitempty"`
	LastOnline        *time.Time `json:"last_online,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsBanned reports whether the user has an active ban at the given instant.
// A banned_until in the past is equivalent to no ban.
func (u *User) IsBanned(now time.Time) bool {
	return u.BannedUntil != nil && u.BannedUntil.After(now)
}
