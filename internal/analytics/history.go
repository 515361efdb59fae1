package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"bed-analytics-backend/internal/model"
	"bed-analytics-backend/internal/store"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// HistoryQuery selects a page of one bed's status-change log.
// Bed accepts either the primary key or the human bed code.
type HistoryQuery struct {
	Bed   string
	Limit int
	Skip  int
}

// BedHeader identifies the resolved bed in a history response.
type BedHeader struct {
	ID            uuid.UUID       `json:"id"`
	BedCode       string          `json:"bedCode"`
	Ward          string          `json:"ward"`
	CurrentStatus model.BedStatus `json:"currentStatus"`
}

// Actor carries the display fields of whoever made a change.
type Actor struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// HistoryEntry is one status change enriched with its actor.
type HistoryEntry struct {
	ID           int64            `json:"id"`
	StatusChange model.ChangeType `json:"statusChange"`
	Timestamp    time.Time        `json:"timestamp"`
	Actor        *Actor           `json:"actor"`
}

// Pagination describes the returned window of a listing.
type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Skip    int   `json:"skip"`
	HasMore bool  `json:"hasMore"`
}

// BedHistory is a page of a bed's log, newest first.
type BedHistory struct {
	Bed        BedHeader      `json:"bed"`
	History    []HistoryEntry `json:"history"`
	Pagination Pagination     `json:"pagination"`
}

// normalizePage applies the default and the cap to limit and floors skip at zero.
func normalizePage(limit, skip int) store.Page {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if skip < 0 {
		skip = 0
	}
	return store.Page{Limit: limit, Skip: skip}
}

// BedHistory returns one page of the bed's status changes, newest first.
func (e *Engine) BedHistory(ctx context.Context, q HistoryQuery) (*BedHistory, error) {
	bed, err := e.store.ResolveBed(ctx, q.Bed)
	if errors.Is(err, store.ErrBedNotFound) {
		return nil, fmt.Errorf("%w: bed %q", ErrNotFound, q.Bed)
	}
	if err != nil {
		return nil, upstream(err)
	}

	page := normalizePage(q.Limit, q.Skip)

	var (
		events []model.StatusChangeEvent
		total  int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = e.store.ListBedHistory(gctx, bed.ID, page)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = e.store.CountEvents(gctx, store.EventFilter{BedID: &bed.ID})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, upstream(err)
	}

	entries := make([]HistoryEntry, 0, len(events))
	for _, ev := range events {
		entry := HistoryEntry{ID: ev.ID, StatusChange: ev.ChangeType, Timestamp: ev.Timestamp}
		if ev.Actor != nil {
			entry.Actor = &Actor{ID: ev.Actor.ID, Name: ev.Actor.Name, Email: ev.Actor.Email, Role: ev.Actor.Role}
		}
		entries = append(entries, entry)
	}

	return &BedHistory{
		Bed: BedHeader{
			ID:            bed.ID,
			BedCode:       bed.Code,
			Ward:          bed.Ward,
			CurrentStatus: bed.Status,
		},
		History: entries,
		Pagination: Pagination{
			Total:   total,
			Limit:   page.Limit,
			Skip:    page.Skip,
			HasMore: int64(page.Skip+page.Limit) < total,
		},
	}, nil
}
