package analytics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"bed-analytics-backend/internal/model"
	"bed-analytics-backend/internal/store"
)

// OccupancySummary counts beds by status.
type OccupancySummary struct {
	TotalBeds           int64 `json:"totalBeds"`
	Occupied            int64 `json:"occupied"`
	Available           int64 `json:"available"`
	Maintenance         int64 `json:"maintenance"`
	Reserved            int64 `json:"reserved"`
	OccupancyPercentage int   `json:"occupancyPercentage"`
}

// WardOccupancy is an OccupancySummary restricted to one ward.
type WardOccupancy struct {
	Ward string `json:"ward"`
	OccupancySummary
}

// Summary counts every bed by status across the hospital.
func (e *Engine) Summary(ctx context.Context) (OccupancySummary, error) {
	return e.countByStatus(ctx, "")
}

// WardBreakdown returns one summary per ward present among the beds, ordered by ward name.
// Beds are grouped from a single snapshot read, so an empty ward name is a ward of its own.
func (e *Engine) WardBreakdown(ctx context.Context) ([]WardOccupancy, error) {
	beds, err := e.store.ListSnapshots(ctx, store.SnapshotFilter{})
	if err != nil {
		return nil, upstream(err)
	}

	index := make(map[string]int)
	out := []WardOccupancy{}
	for _, b := range beds {
		i, ok := index[b.Ward]
		if !ok {
			i = len(out)
			index[b.Ward] = i
			out = append(out, WardOccupancy{Ward: b.Ward})
		}
		out[i].add(b.Status)
	}
	for i := range out {
		out[i].OccupancyPercentage = percentage(out[i].Occupied, out[i].TotalBeds)
	}

	sortByWard(out, func(w WardOccupancy) string { return w.Ward })
	return out, nil
}

func (s *OccupancySummary) add(status model.BedStatus) {
	s.TotalBeds++
	switch status {
	case model.BedOccupied:
		s.Occupied++
	case model.BedAvailable:
		s.Available++
	case model.BedMaintenance:
		s.Maintenance++
	case model.BedReserved:
		s.Reserved++
	}
}

// countByStatus issues the five counts concurrently and waits for all of them.
func (e *Engine) countByStatus(ctx context.Context, ward string) (OccupancySummary, error) {
	var s OccupancySummary
	counts := []struct {
		status model.BedStatus
		dst    *int64
	}{
		{"", &s.TotalBeds},
		{model.BedOccupied, &s.Occupied},
		{model.BedAvailable, &s.Available},
		{model.BedMaintenance, &s.Maintenance},
		{model.BedReserved, &s.Reserved},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range counts {
		c := c
		g.Go(func() error {
			n, err := e.store.CountSnapshots(gctx, store.SnapshotFilter{Status: c.status, Ward: ward})
			if err != nil {
				return err
			}
			*c.dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return OccupancySummary{}, upstream(err)
	}

	s.OccupancyPercentage = percentage(s.Occupied, s.TotalBeds)
	return s, nil
}
