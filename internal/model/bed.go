package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BedStatus is the current state of a bed.
type BedStatus string

const (
	BedAvailable   BedStatus = "available"
	BedOccupied    BedStatus = "occupied"
	BedMaintenance BedStatus = "maintenance"
	BedReserved    BedStatus = "reserved"
)

// BedStatuses lists every recognised bed status.
var BedStatuses = []BedStatus{BedAvailable, BedOccupied, BedMaintenance, BedReserved}

// Valid reports whether s is a recognised bed status.
func (s BedStatus) Valid() bool {
	for _, v := range BedStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Bed is the current-state snapshot of a single bed (hot table).
// UpdatedAt doubles as the admission time while the bed is occupied.
type Bed struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string    `gorm:"uniqueIndex;size:64;not null" json:"bedCode"`
	Ward        string    `gorm:"index;size:128;not null" json:"ward"`
	Status      BedStatus `gorm:"index;size:32;not null" json:"status"`
	PatientName *string   `gorm:"size:256" json:"patientName"`
	PatientRef  *string   `gorm:"size:64" json:"patientId"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" json:"lastUpdated"`
}

// BeforeCreate assigns a primary key when the caller left it empty.
func (b *Bed) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
