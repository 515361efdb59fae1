package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"bed-analytics-backend/internal/model"
	"bed-analytics-backend/internal/parse"
	"bed-analytics-backend/internal/store"
)

// DefaultTrendWindow is used when the caller omits startDate.
const DefaultTrendWindow = 30 * 24 * time.Hour

// trendChangeTypes are the transitions that count toward occupancy trends.
var trendChangeTypes = []model.ChangeType{
	model.ChangeAssigned,
	model.ChangeReleased,
	model.ChangeMaintenanceStart,
	model.ChangeMaintenanceEnd,
}

// TrendQuery carries the raw trend parameters. Empty values take defaults.
type TrendQuery struct {
	StartDate   string
	EndDate     string
	Granularity string
}

// TimeRange is the resolved trend window.
type TimeRange struct {
	Start       time.Time         `json:"start"`
	End         time.Time         `json:"end"`
	Granularity parse.Granularity `json:"granularity"`
}

// TrendBucket aggregates the transitions that fell in one period.
type TrendBucket struct {
	Period        string `json:"period"`
	Count         int    `json:"count"`
	AssignedCount int    `json:"assignedCount"`
	ReleasedCount int    `json:"releasedCount"`
}

// OccupancyTrends is a bucketed series of status transitions.
type OccupancyTrends struct {
	TimeRange TimeRange     `json:"timeRange"`
	TotalBeds int64         `json:"totalBeds"`
	Trends    []TrendBucket `json:"trends"`
}

// Trends buckets status transitions in [start, end] by the requested granularity.
func (e *Engine) Trends(ctx context.Context, now time.Time, q TrendQuery) (*OccupancyTrends, error) {
	tr, err := resolveTrendRange(now, q)
	if err != nil {
		return nil, err
	}

	var (
		events    []model.StatusChangeEvent
		totalBeds int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = e.store.ListEvents(gctx, store.EventFilter{
			ChangeTypes: trendChangeTypes,
			From:        tr.Start,
			To:          tr.End,
		})
		return err
	})
	g.Go(func() error {
		var err error
		totalBeds, err = e.store.CountSnapshots(gctx, store.SnapshotFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, upstream(err)
	}

	return &OccupancyTrends{
		TimeRange: tr,
		TotalBeds: totalBeds,
		Trends:    Bucketize(events, tr.Granularity),
	}, nil
}

func resolveTrendRange(now time.Time, q TrendQuery) (TimeRange, error) {
	start := now.Add(-DefaultTrendWindow)
	end := now
	var err error
	if q.StartDate != "" {
		if start, err = parse.Instant(q.StartDate); err != nil {
			return TimeRange{}, invalidArgument("%v", err)
		}
	}
	if q.EndDate != "" {
		if end, err = parse.Instant(q.EndDate); err != nil {
			return TimeRange{}, invalidArgument("%v", err)
		}
	}
	if start.After(end) {
		return TimeRange{}, invalidArgument("start date cannot be after end date")
	}

	g, err := parse.ParseGranularity(q.Granularity)
	if err != nil {
		return TimeRange{}, invalidArgument("%v", err)
	}
	return TimeRange{Start: start.UTC(), End: end.UTC(), Granularity: g}, nil
}

// BucketKey formats the period t falls in. Weeks follow ISO-8601 numbering.
func BucketKey(t time.Time, g parse.Granularity) string {
	t = t.UTC()
	switch g {
	case parse.Hourly:
		return t.Format("2006-01-02 15:00")
	case parse.Weekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	default:
		return t.Format("2006-01-02")
	}
}

// Bucketize counts trend transitions per period, in ascending period order.
func Bucketize(events []model.StatusChangeEvent, g parse.Granularity) []TrendBucket {
	counted := make(map[model.ChangeType]bool, len(trendChangeTypes))
	for _, ct := range trendChangeTypes {
		counted[ct] = true
	}

	buckets := make(map[string]*TrendBucket)
	for _, ev := range events {
		if !counted[ev.ChangeType] {
			continue
		}
		key := BucketKey(ev.Timestamp, g)
		b, ok := buckets[key]
		if !ok {
			b = &TrendBucket{Period: key}
			buckets[key] = b
		}
		b.Count++
		switch ev.ChangeType {
		case model.ChangeAssigned:
			b.AssignedCount++
		case model.ChangeReleased:
			b.ReleasedCount++
		}
	}

	out := make([]TrendBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}
