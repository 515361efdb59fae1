// Package analytics derives occupancy, trend, forecast and cleaning metrics from
// the bed status-change log and the current bed snapshots.
//
// Every operation is a read-only recomputation against the store. Nothing is
// cached or persisted, and callers pass the request's "now" explicitly so that
// one response is computed against a single instant.
package analytics

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"bed-analytics-backend/internal/store"
)

// Engine runs analytics queries against a Store.
type Engine struct {
	store store.Store
}

// NewEngine creates an analytics engine backed by s.
func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

// sortByWard orders items by ward name using locale-aware collation.
func sortByWard[T any](items []T, ward func(T) string) {
	c := collate.New(language.Und)
	sort.SliceStable(items, func(i, j int) bool {
		return c.CompareString(ward(items[i]), ward(items[j])) < 0
	})
}
