package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"bed-analytics-backend/internal/model"
	"bed-analytics-backend/internal/store"
)

const (
	ForecastHorizon     = 72 * time.Hour
	TimelineBucketWidth = 6 * time.Hour
	MaxDischargeDetails = 10
)

// ExpectedDischarge projects when an occupied bed should free up.
type ExpectedDischarge struct {
	BedID                 uuid.UUID
	BedCode               string
	Ward                  string
	PatientRef            *string
	AdmissionTime         time.Time
	ExpectedDischargeTime time.Time
	HoursUntilDischarge   float64
	DaysInBed             float64
}

// DischargeWindows counts discharges expected within 24, 48 and 72 hours.
type DischargeWindows struct {
	Next24Hours int `json:"next24Hours"`
	Next48Hours int `json:"next48Hours"`
	Next72Hours int `json:"next72Hours"`
}

// DischargeDetail is the rounded public view of an ExpectedDischarge.
type DischargeDetail struct {
	BedID                 uuid.UUID `json:"bedId"`
	BedCode               string    `json:"bedCode"`
	Ward                  string    `json:"ward"`
	PatientID             *string   `json:"patientId"`
	ExpectedDischargeTime time.Time `json:"expectedDischargeTime"`
	HoursUntilDischarge   float64   `json:"hoursUntilDischarge"`
	DaysInBed             float64   `json:"daysInBed"`
}

// DischargeSummary holds the window counts and the earliest discharges.
type DischargeSummary struct {
	DischargeWindows
	Total   int               `json:"total"`
	Details []DischargeDetail `json:"details"`
}

// WardForecast projects discharges and availability for one ward.
type WardForecast struct {
	Ward                  string           `json:"ward"`
	TotalBeds             int              `json:"totalBeds"`
	OccupiedBeds          int              `json:"occupiedBeds"`
	AvailableBeds         int              `json:"availableBeds"`
	OccupancyPercentage   int              `json:"occupancyPercentage"`
	ExpectedDischarges    DischargeWindows `json:"expectedDischarges"`
	ProjectedAvailability DischargeWindows `json:"projectedAvailability"`
}

// TimelineBed identifies a bed expected to be discharged inside a timeline bucket.
type TimelineBed struct {
	BedID     uuid.UUID `json:"bedId"`
	BedCode   string    `json:"bedCode"`
	Ward      string    `json:"ward"`
	PatientID *string   `json:"patientId"`
}

// TimelineBucket is a 6-hour slice [StartTime, EndTime) of the forecast horizon.
type TimelineBucket struct {
	StartTime          time.Time     `json:"startTime"`
	EndTime            time.Time     `json:"endTime"`
	Label              string        `json:"label"`
	ExpectedDischarges int           `json:"expectedDischarges"`
	Beds               []TimelineBed `json:"beds"`
}

// CurrentMetrics is the occupancy snapshot the forecast starts from.
type CurrentMetrics struct {
	TotalBeds           int `json:"totalBeds"`
	OccupiedBeds        int `json:"occupiedBeds"`
	AvailableBeds       int `json:"availableBeds"`
	OccupancyPercentage int `json:"occupancyPercentage"`
}

// LengthOfStayEstimate reports the mean stay used for projection.
type LengthOfStayEstimate struct {
	Days           float64 `json:"days"`
	BasedOnSamples int     `json:"basedOnSamples"`
	Note           string  `json:"note"`
}

// ForecastMetadata describes how and when a forecast was computed.
type ForecastMetadata struct {
	Timestamp         time.Time `json:"timestamp"`
	ForecastHorizon   string    `json:"forecastHorizon"`
	CalculationMethod string    `json:"calculationMethod"`
	Disclaimer        string    `json:"disclaimer"`
}

// Forecast is the full discharge projection for the hospital.
type Forecast struct {
	CurrentMetrics      CurrentMetrics       `json:"currentMetrics"`
	AverageLengthOfStay LengthOfStayEstimate `json:"averageLengthOfStay"`
	ExpectedDischarges  DischargeSummary     `json:"expectedDischarges"`
	WardForecasts       []WardForecast       `json:"wardForecasts"`
	Timeline            []TimelineBucket     `json:"timeline"`
	Insights            []Insight            `json:"insights"`
	Metadata            ForecastMetadata     `json:"metadata"`
}

// Forecast projects discharges over the next 72 hours from the mean length of stay.
func (e *Engine) Forecast(ctx context.Context, now time.Time) (*Forecast, error) {
	var (
		los  LengthOfStay
		beds []model.Bed
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		los, err = e.LengthOfStay(gctx, now)
		return err
	})
	g.Go(func() error {
		var err error
		if beds, err = e.store.ListSnapshots(gctx, store.SnapshotFilter{}); err != nil {
			return upstream(err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	discharges := ProjectDischarges(beds, los.MeanDays, now)
	windows := CountWindows(discharges)
	wards := ForecastWards(beds, discharges)

	occupied := len(discharges)
	metrics := CurrentMetrics{
		TotalBeds:           len(beds),
		OccupiedBeds:        occupied,
		AvailableBeds:       len(beds) - occupied,
		OccupancyPercentage: percentage(int64(occupied), int64(len(beds))),
	}

	details := make([]DischargeDetail, 0, MaxDischargeDetails)
	for i, d := range discharges {
		if i == MaxDischargeDetails {
			break
		}
		details = append(details, DischargeDetail{
			BedID:                 d.BedID,
			BedCode:               d.BedCode,
			Ward:                  d.Ward,
			PatientID:             d.PatientRef,
			ExpectedDischargeTime: d.ExpectedDischargeTime.UTC(),
			HoursUntilDischarge:   round1(d.HoursUntilDischarge),
			DaysInBed:             round1(d.DaysInBed),
		})
	}

	return &Forecast{
		CurrentMetrics: metrics,
		AverageLengthOfStay: LengthOfStayEstimate{
			Days:           round1(los.MeanDays),
			BasedOnSamples: len(los.Stays),
			Note:           fmt.Sprintf("Calculated from %d patient stays in last 30 days", len(los.Stays)),
		},
		ExpectedDischarges: DischargeSummary{
			DischargeWindows: windows,
			Total:            len(discharges),
			Details:          details,
		},
		WardForecasts: wards,
		Timeline:      BuildTimeline(discharges, now),
		Insights: GenerateInsights(InsightInput{
			TotalBeds:         metrics.TotalBeds,
			OccupiedBeds:      metrics.OccupiedBeds,
			DischargesNext24h: windows.Next24Hours,
			Wards:             wards,
		}),
		Metadata: ForecastMetadata{
			Timestamp:         now.UTC(),
			ForecastHorizon:   "72 hours",
			CalculationMethod: "Average length of stay based on historical occupancy logs",
			Disclaimer:        "Forecasting is based on historical trends and may not account for emergency admissions or unscheduled discharges",
		},
	}, nil
}

// ProjectDischarges treats each occupied bed's last update as its admission and
// adds meanDays to it. The result is ordered by expected discharge time.
func ProjectDischarges(beds []model.Bed, meanDays float64, now time.Time) []ExpectedDischarge {
	stay := time.Duration(meanDays * float64(24*time.Hour))

	var out []ExpectedDischarge
	for _, b := range beds {
		if b.Status != model.BedOccupied {
			continue
		}
		expected := b.UpdatedAt.Add(stay)
		hours := expected.Sub(now).Hours()
		if hours < 0 {
			hours = 0
		}
		out = append(out, ExpectedDischarge{
			BedID:                 b.ID,
			BedCode:               b.Code,
			Ward:                  b.Ward,
			PatientRef:            b.PatientRef,
			AdmissionTime:         b.UpdatedAt,
			ExpectedDischargeTime: expected,
			HoursUntilDischarge:   hours,
			DaysInBed:             now.Sub(b.UpdatedAt).Hours() / 24,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExpectedDischargeTime.Before(out[j].ExpectedDischargeTime)
	})
	return out
}

// CountWindows counts discharges due within 24, 48 and 72 hours.
func CountWindows(discharges []ExpectedDischarge) DischargeWindows {
	var w DischargeWindows
	for _, d := range discharges {
		if d.HoursUntilDischarge <= 24 {
			w.Next24Hours++
		}
		if d.HoursUntilDischarge <= 48 {
			w.Next48Hours++
		}
		if d.HoursUntilDischarge <= 72 {
			w.Next72Hours++
		}
	}
	return w
}

// ForecastWards groups beds by ward and adds each ward's expected discharges
// to its currently available beds.
func ForecastWards(beds []model.Bed, discharges []ExpectedDischarge) []WardForecast {
	byWard := make(map[string]*WardForecast)
	var order []string
	for _, b := range beds {
		w, ok := byWard[b.Ward]
		if !ok {
			w = &WardForecast{Ward: b.Ward}
			byWard[b.Ward] = w
			order = append(order, b.Ward)
		}
		w.TotalBeds++
		switch b.Status {
		case model.BedOccupied:
			w.OccupiedBeds++
		case model.BedAvailable:
			w.AvailableBeds++
		}
	}

	wardDischarges := make(map[string][]ExpectedDischarge)
	for _, d := range discharges {
		wardDischarges[d.Ward] = append(wardDischarges[d.Ward], d)
	}

	out := make([]WardForecast, 0, len(order))
	for _, name := range order {
		w := byWard[name]
		w.OccupancyPercentage = percentage(int64(w.OccupiedBeds), int64(w.TotalBeds))
		w.ExpectedDischarges = CountWindows(wardDischarges[name])
		w.ProjectedAvailability = DischargeWindows{
			Next24Hours: w.AvailableBeds + w.ExpectedDischarges.Next24Hours,
			Next48Hours: w.AvailableBeds + w.ExpectedDischarges.Next48Hours,
			Next72Hours: w.AvailableBeds + w.ExpectedDischarges.Next72Hours,
		}
		out = append(out, *w)
	}

	sortByWard(out, func(w WardForecast) string { return w.Ward })
	return out
}

// BuildTimeline splits [now, now+72h) into twelve contiguous 6-hour buckets and
// places each discharge in the bucket containing its expected time.
func BuildTimeline(discharges []ExpectedDischarge, now time.Time) []TimelineBucket {
	n := int(ForecastHorizon / TimelineBucketWidth)
	buckets := make([]TimelineBucket, 0, n)
	for i := 0; i < n; i++ {
		start := now.Add(time.Duration(i) * TimelineBucketWidth)
		end := start.Add(TimelineBucketWidth)
		from := i * int(TimelineBucketWidth/time.Hour)
		to := from + int(TimelineBucketWidth/time.Hour)

		beds := []TimelineBed{}
		for _, d := range discharges {
			if !d.ExpectedDischargeTime.Before(start) && d.ExpectedDischargeTime.Before(end) {
				beds = append(beds, TimelineBed{BedID: d.BedID, BedCode: d.BedCode, Ward: d.Ward, PatientID: d.PatientRef})
			}
		}

		buckets = append(buckets, TimelineBucket{
			StartTime:          start.UTC(),
			EndTime:            end.UTC(),
			Label:              fmt.Sprintf("%dh - %dh", from, to),
			ExpectedDischarges: len(beds),
			Beds:               beds,
		})
	}
	return buckets
}
