package analytics

import (
	"context"

	"bed-analytics-backend/internal/model"
	"bed-analytics-backend/internal/parse"
	"bed-analytics-backend/internal/store"
)

// Beds lists bed snapshots, optionally filtered by status and ward.
func (e *Engine) Beds(ctx context.Context, status, ward string) ([]model.Bed, error) {
	st, err := parse.BedStatus(status)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}
	beds, err := e.store.ListSnapshots(ctx, store.SnapshotFilter{Status: st, Ward: ward})
	if err != nil {
		return nil, upstream(err)
	}
	if beds == nil {
		beds = []model.Bed{}
	}
	return beds, nil
}

// Wards lists the distinct wards in locale order.
func (e *Engine) Wards(ctx context.Context) ([]string, error) {
	wards, err := e.store.DistinctWards(ctx)
	if err != nil {
		return nil, upstream(err)
	}
	if wards == nil {
		wards = []string{}
	}
	sortByWard(wards, func(w string) string { return w })
	return wards, nil
}
