package model

import (
	"time"

	"github.com/google/uuid"
)

// CleaningStatus is the lifecycle state of a cleaning task.
type CleaningStatus string

const (
	CleaningInProgress CleaningStatus = "in_progress"
	CleaningCompleted  CleaningStatus = "completed"
)

// CleaningRecord is a single bed cleaning task. Durations are in minutes.
type CleaningRecord struct {
	ID                int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	BedID             uuid.UUID      `gorm:"type:uuid;not null;index" json:"bedId"`
	Ward              string         `gorm:"size:128;not null;index" json:"ward"`
	StartTime         time.Time      `gorm:"not null;index" json:"startTime"`
	EndTime           *time.Time     `json:"endTime"`
	EstimatedDuration int            `gorm:"not null" json:"estimatedDuration"`
	ActualDuration    *int           `json:"actualDuration"`
	Status            CleaningStatus `gorm:"size:32;not null;index" json:"status"`
	AssignedToID      *uuid.UUID     `gorm:"type:uuid" json:"-"`
	CompletedByID     *uuid.UUID     `gorm:"type:uuid" json:"-"`

	// Associations
	AssignedTo  *User `gorm:"foreignKey:AssignedToID" json:"assignedTo"`
	CompletedBy *User `gorm:"foreignKey:CompletedByID" json:"completedBy"`
}

// TableName keeps cleaning tasks under their historical name.
func (CleaningRecord) TableName() string {
	return "cleaning_logs"
}

// Overdue reports whether a completed cleaning ran past its estimate.
func (r CleaningRecord) Overdue() bool {
	return r.Status == CleaningCompleted && r.ActualDuration != nil && *r.ActualDuration > r.EstimatedDuration
}

// Actual returns the recorded duration, or zero while the task is still open.
func (r CleaningRecord) Actual() int {
	if r.ActualDuration == nil {
		return 0
	}
	return *r.ActualDuration
}
