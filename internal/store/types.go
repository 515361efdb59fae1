package store

import (
	"time"

	"github.com/google/uuid"

	"bed-analytics-backend/internal/model"
)

// EventFilter narrows a status-change log query. Zero times leave that side open;
// both bounds are inclusive.
type EventFilter struct {
	BedID       *uuid.UUID
	ChangeTypes []model.ChangeType
	From        time.Time
	To          time.Time
}

// SnapshotFilter narrows a bed snapshot query. Empty fields match everything.
type SnapshotFilter struct {
	Status model.BedStatus
	Ward   string
}

// CleaningFilter narrows a cleaning log query by ward and start time (inclusive).
type CleaningFilter struct {
	Ward string
	From time.Time
	To   time.Time
}

// Page selects a window of a descending history listing.
type Page struct {
	Limit int
	Skip  int
}
