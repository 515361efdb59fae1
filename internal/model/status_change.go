package model

import (
	"time"

	"github.com/google/uuid"
)

// ChangeType classifies a bed status transition.
type ChangeType string

const (
	ChangeAssigned             ChangeType = "assigned"
	ChangeReleased             ChangeType = "released"
	ChangeMaintenanceStart     ChangeType = "maintenance_start"
	ChangeMaintenanceEnd       ChangeType = "maintenance_end"
	ChangeReserved             ChangeType = "reserved"
	ChangeReservationCancelled ChangeType = "reservation_cancelled"
)

// StatusChangeEvent is one immutable entry of the bed occupancy log (cold table).
type StatusChangeEvent struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	BedID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_occupancy_logs_bed_ts,priority:1" json:"bedId"`
	ActorID    *uuid.UUID `gorm:"type:uuid;index" json:"-"`
	ChangeType ChangeType `gorm:"size:32;not null;index" json:"statusChange"`
	Timestamp  time.Time  `gorm:"not null;index;index:idx_occupancy_logs_bed_ts,priority:2" json:"timestamp"`

	// Associations
	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

// TableName keeps the log under its historical name.
func (StatusChangeEvent) TableName() string {
	return "occupancy_logs"
}
