package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"bed-analytics-backend/internal/model"
	"bed-analytics-backend/internal/parse"
	"bed-analytics-backend/internal/store"
)

const (
	DefaultCleaningPeriodDays = 7
	MaxRecentCleanings        = 10
)

// CleaningQuery carries the raw cleaning-performance parameters. An explicit
// range needs both StartDate and EndDate; otherwise the last Period days are used.
// Ward is the effective filter after any access scoping by the caller.
type CleaningQuery struct {
	Ward      string
	StartDate string
	EndDate   string
	Period    string
}

// CleaningSummary holds totals and rates over the selected cleanings.
type CleaningSummary struct {
	TotalCleanings       int `json:"totalCleanings"`
	TotalCompleted       int `json:"totalCompleted"`
	TotalOverdue         int `json:"totalOverdue"`
	TotalInProgress      int `json:"totalInProgress"`
	OverdueRate          int `json:"overdueRate"`
	OnTimeRate           int `json:"onTimeRate"`
	AvgActualDuration    int `json:"avgActualDuration"`
	AvgEstimatedDuration int `json:"avgEstimatedDuration"`
}

// CleaningHighlight describes a notable completed cleaning.
type CleaningHighlight struct {
	BedID       uuid.UUID `json:"bedId"`
	Ward        string    `json:"ward"`
	Duration    int       `json:"duration"`
	CompletedBy string    `json:"completedBy"`
}

// CleaningHighlights holds the fastest and slowest completed cleanings, nil when none completed.
type CleaningHighlights struct {
	FastestCleaning *CleaningHighlight `json:"fastestCleaning"`
	SlowestCleaning *CleaningHighlight `json:"slowestCleaning"`
}

// WardCleaningStats aggregates cleanings for one ward.
type WardCleaningStats struct {
	Ward        string `json:"ward"`
	Total       int    `json:"total"`
	Completed   int    `json:"completed"`
	Overdue     int    `json:"overdue"`
	InProgress  int    `json:"inProgress"`
	AvgDuration int    `json:"avgDuration"`
}

// StaffCleaningStats aggregates completed cleanings per staff member.
type StaffCleaningStats struct {
	StaffID        uuid.UUID `json:"staffId"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	TotalCompleted int       `json:"totalCompleted"`
	Overdue        int       `json:"overdue"`
	AvgDuration    int       `json:"avgDuration"`
}

// DailyCleaningStats counts cleanings started on one UTC date.
type DailyCleaningStats struct {
	Date       string `json:"date"`
	Total      int    `json:"total"`
	Completed  int    `json:"completed"`
	Overdue    int    `json:"overdue"`
	InProgress int    `json:"inProgress"`
}

// CleaningRange echoes the resolved filter. End is nil for a trailing period.
type CleaningRange struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end"`
	Ward  string     `json:"ward,omitempty"`
}

// CleaningPerformance aggregates cleaning tasks for one ward filter and date range.
type CleaningPerformance struct {
	Range            CleaningRange          `json:"range"`
	Summary          CleaningSummary        `json:"summary"`
	Performance      CleaningHighlights     `json:"performance"`
	ByWard           []WardCleaningStats    `json:"byWard"`
	StaffPerformance []StaffCleaningStats   `json:"staffPerformance"`
	DailyBreakdown   []DailyCleaningStats   `json:"dailyBreakdown"`
	RecentCleanings  []model.CleaningRecord `json:"recentCleanings"`
}

// CleaningPerformance loads the matching cleaning tasks and aggregates them.
func (e *Engine) CleaningPerformance(ctx context.Context, now time.Time, q CleaningQuery) (*CleaningPerformance, error) {
	filter, err := resolveCleaningFilter(now, q)
	if err != nil {
		return nil, err
	}

	records, err := e.store.ListCleaningRecords(ctx, filter)
	if err != nil {
		return nil, upstream(err)
	}

	perf := AnalyzeCleanings(records)
	perf.Range = CleaningRange{Start: filter.From, Ward: filter.Ward}
	if !filter.To.IsZero() {
		end := filter.To
		perf.Range.End = &end
	}
	return perf, nil
}

func resolveCleaningFilter(now time.Time, q CleaningQuery) (store.CleaningFilter, error) {
	f := store.CleaningFilter{Ward: q.Ward}
	if q.StartDate != "" && q.EndDate != "" {
		start, err := parse.Instant(q.StartDate)
		if err != nil {
			return f, invalidArgument("%v", err)
		}
		end, err := parse.Instant(q.EndDate)
		if err != nil {
			return f, invalidArgument("%v", err)
		}
		if start.After(end) {
			return f, invalidArgument("start date cannot be after end date")
		}
		f.From, f.To = start, end
		return f, nil
	}

	days := parse.IntOr(q.Period, DefaultCleaningPeriodDays)
	if days <= 0 {
		days = DefaultCleaningPeriodDays
	}
	f.From = now.Add(-time.Duration(days) * 24 * time.Hour).UTC()
	return f, nil
}

type durationAcc struct {
	sum, n int
}

func (a *durationAcc) add(minutes int) {
	a.sum += minutes
	a.n++
}

func (a durationAcc) avg() int {
	if a.n == 0 {
		return 0
	}
	return roundInt(float64(a.sum) / float64(a.n))
}

// AnalyzeCleanings computes every cleaning rollup in a single pass over records.
// records keep their retrieval order; ties in duration resolve by that order.
func AnalyzeCleanings(records []model.CleaningRecord) *CleaningPerformance {
	var (
		sum       CleaningSummary
		completed []model.CleaningRecord
		actual    durationAcc
		estimated durationAcc
	)

	wards := make(map[string]*WardCleaningStats)
	wardDurations := make(map[string]*durationAcc)
	var wardOrder []string

	staff := make(map[uuid.UUID]*StaffCleaningStats)
	staffDurations := make(map[uuid.UUID]*durationAcc)
	var staffOrder []uuid.UUID

	days := make(map[string]*DailyCleaningStats)

	for _, r := range records {
		sum.TotalCleanings++
		estimated.add(r.EstimatedDuration)

		w, ok := wards[r.Ward]
		if !ok {
			w = &WardCleaningStats{Ward: r.Ward}
			wards[r.Ward] = w
			wardDurations[r.Ward] = &durationAcc{}
			wardOrder = append(wardOrder, r.Ward)
		}
		dateKey := r.StartTime.UTC().Format("2006-01-02")
		d, ok := days[dateKey]
		if !ok {
			d = &DailyCleaningStats{Date: dateKey}
			days[dateKey] = d
		}
		w.Total++
		d.Total++

		switch r.Status {
		case model.CleaningCompleted:
			overdue := r.Overdue()
			completed = append(completed, r)
			actual.add(r.Actual())
			wardDurations[r.Ward].add(r.Actual())

			sum.TotalCompleted++
			w.Completed++
			d.Completed++
			if overdue {
				sum.TotalOverdue++
				w.Overdue++
				d.Overdue++
			}

			if r.CompletedByID != nil {
				id := *r.CompletedByID
				s, ok := staff[id]
				if !ok {
					s = &StaffCleaningStats{StaffID: id, Name: "Unknown"}
					if r.CompletedBy != nil {
						s.Name = r.CompletedBy.DisplayName()
						s.Email = r.CompletedBy.Email
					}
					staff[id] = s
					staffDurations[id] = &durationAcc{}
					staffOrder = append(staffOrder, id)
				}
				s.TotalCompleted++
				if overdue {
					s.Overdue++
				}
				staffDurations[id].add(r.Actual())
			}
		case model.CleaningInProgress:
			sum.TotalInProgress++
			w.InProgress++
			d.InProgress++
		}
	}

	if sum.TotalCompleted > 0 {
		sum.OverdueRate = roundInt(float64(sum.TotalOverdue) / float64(sum.TotalCompleted) * 100)
		sum.OnTimeRate = roundInt(float64(sum.TotalCompleted-sum.TotalOverdue) / float64(sum.TotalCompleted) * 100)
	}
	sum.AvgActualDuration = actual.avg()
	sum.AvgEstimatedDuration = estimated.avg()

	perf := &CleaningPerformance{
		Summary:          sum,
		Performance:      highlights(completed),
		ByWard:           make([]WardCleaningStats, 0, len(wardOrder)),
		StaffPerformance: make([]StaffCleaningStats, 0, len(staffOrder)),
		DailyBreakdown:   make([]DailyCleaningStats, 0, len(days)),
		RecentCleanings:  recentCleanings(records),
	}

	for _, name := range wardOrder {
		w := wards[name]
		w.AvgDuration = wardDurations[name].avg()
		perf.ByWard = append(perf.ByWard, *w)
	}
	sortByWard(perf.ByWard, func(w WardCleaningStats) string { return w.Ward })

	for _, id := range staffOrder {
		s := staff[id]
		s.AvgDuration = staffDurations[id].avg()
		perf.StaffPerformance = append(perf.StaffPerformance, *s)
	}
	sort.SliceStable(perf.StaffPerformance, func(i, j int) bool {
		return perf.StaffPerformance[i].TotalCompleted > perf.StaffPerformance[j].TotalCompleted
	})

	for _, d := range days {
		perf.DailyBreakdown = append(perf.DailyBreakdown, *d)
	}
	sort.Slice(perf.DailyBreakdown, func(i, j int) bool {
		return perf.DailyBreakdown[i].Date < perf.DailyBreakdown[j].Date
	})

	return perf
}

// highlights picks the fastest and slowest completed cleanings.
func highlights(completed []model.CleaningRecord) CleaningHighlights {
	if len(completed) == 0 {
		return CleaningHighlights{}
	}
	sorted := make([]model.CleaningRecord, len(completed))
	copy(sorted, completed)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Actual() < sorted[j].Actual() })

	return CleaningHighlights{
		FastestCleaning: highlight(sorted[0]),
		SlowestCleaning: highlight(sorted[len(sorted)-1]),
	}
}

func highlight(r model.CleaningRecord) *CleaningHighlight {
	by := "Unknown"
	if r.CompletedBy != nil && r.CompletedBy.Name != "" {
		by = r.CompletedBy.Name
	}
	return &CleaningHighlight{BedID: r.BedID, Ward: r.Ward, Duration: r.Actual(), CompletedBy: by}
}

// recentCleanings returns the latest records by start time.
func recentCleanings(records []model.CleaningRecord) []model.CleaningRecord {
	recent := make([]model.CleaningRecord, len(records))
	copy(recent, records)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].StartTime.After(recent[j].StartTime) })
	if len(recent) > MaxRecentCleanings {
		recent = recent[:MaxRecentCleanings]
	}
	return recent
}
