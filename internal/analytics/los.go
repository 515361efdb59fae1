package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"bed-analytics-backend/internal/model"
	"bed-analytics-backend/internal/store"
)

const (
	// DefaultLengthOfStayDays is the cold-start estimate used when no stay
	// could be paired in the lookback window.
	DefaultLengthOfStayDays = 3.5

	// LengthOfStayLookback is fixed so the forecast does not drift with caller input.
	LengthOfStayLookback = 30 * 24 * time.Hour

	msPerDay = 24 * 60 * 60 * 1000
)

// Stay is an assigned event immediately followed by a released event on one bed.
type Stay struct {
	BedID        uuid.UUID `json:"bedId"`
	AssignedAt   time.Time `json:"assignedAt"`
	ReleasedAt   time.Time `json:"releasedAt"`
	DurationDays float64   `json:"durationDays"`
}

// LengthOfStay is the estimate derived from paired stays.
type LengthOfStay struct {
	MeanDays float64
	Stays    []Stay
	// Fallback is set when no stays were found and MeanDays is the default.
	Fallback bool
}

// LengthOfStay pairs assigned/released events from the last 30 days and averages them.
func (e *Engine) LengthOfStay(ctx context.Context, now time.Time) (LengthOfStay, error) {
	events, err := e.store.ListEvents(ctx, store.EventFilter{
		ChangeTypes: []model.ChangeType{model.ChangeAssigned, model.ChangeReleased},
		From:        now.Add(-LengthOfStayLookback),
		To:          now,
	})
	if err != nil {
		return LengthOfStay{}, upstream(err)
	}

	stays := PairStays(events)
	mean, fallback := MeanLengthOfStay(stays)
	return LengthOfStay{MeanDays: mean, Stays: stays, Fallback: fallback}, nil
}

// PairStays groups events by bed, orders each bed's events by time and emits a
// Stay for every adjacent (assigned, released) pair. The scan advances one
// event at a time, so pairs are examined as overlapping windows, not consumed.
func PairStays(events []model.StatusChangeEvent) []Stay {
	byBed := make(map[uuid.UUID][]model.StatusChangeEvent)
	for _, ev := range events {
		byBed[ev.BedID] = append(byBed[ev.BedID], ev)
	}

	beds := make([]uuid.UUID, 0, len(byBed))
	for id := range byBed {
		beds = append(beds, id)
	}
	sort.Slice(beds, func(i, j int) bool { return beds[i].String() < beds[j].String() })

	var stays []Stay
	for _, id := range beds {
		seq := byBed[id]
		sort.SliceStable(seq, func(i, j int) bool { return seq[i].Timestamp.Before(seq[j].Timestamp) })

		for i := 0; i < len(seq)-1; i++ {
			if seq[i].ChangeType != model.ChangeAssigned || seq[i+1].ChangeType != model.ChangeReleased {
				continue
			}
			elapsed := seq[i+1].Timestamp.Sub(seq[i].Timestamp)
			stays = append(stays, Stay{
				BedID:        id,
				AssignedAt:   seq[i].Timestamp,
				ReleasedAt:   seq[i+1].Timestamp,
				DurationDays: float64(elapsed.Milliseconds()) / msPerDay,
			})
		}
	}
	return stays
}

// MeanLengthOfStay averages stay durations, falling back to DefaultLengthOfStayDays.
func MeanLengthOfStay(stays []Stay) (mean float64, fallback bool) {
	if len(stays) == 0 {
		return DefaultLengthOfStayDays, true
	}
	var sum float64
	for _, s := range stays {
		sum += s.DurationDays
	}
	return sum / float64(len(stays)), false
}
