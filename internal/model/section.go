package model

// Section is a top-level forum area. Visibility is restricted to the roles
// listed in AllowedFor; a section with no allowed roles is invalid.
type Section struct {
	ID          int64         `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string        `json:"name" gorm:"uniqueIndex;size:255;not null"`
	Description *string       `json:"description,omitempty" gorm:"size:1024"`
	AllowedFor  []SectionRole `json:"allowed_for,omitempty" gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE"`
}

// SectionRole grants one role visibility into one section.
type SectionRole struct {
	ID        int64 `json:"-" gorm:"primaryKey;autoIncrement"`
	SectionID int64 `json:"-" gorm:"index;not null"`
	Role      Role  `json:"role" gorm:"size:16;not null"`
}
