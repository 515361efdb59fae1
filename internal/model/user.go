package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a staff member who changes bed state or performs cleanings.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:128" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:256;not null" json:"email"`
	Role      string    `gorm:"size:32;not null" json:"role"`
	Ward      string    `gorm:"size:128" json:"ward,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
}

// BeforeCreate assigns a primary key when the caller left it empty.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DisplayName returns the name, falling back to the email address.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
