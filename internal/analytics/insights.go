package analytics

import (
	"fmt"
	"strings"
)

// InsightType classifies an insight as a warning or informational.
type InsightType string

const (
	InsightWarning InsightType = "warning"
	InsightInfo    InsightType = "info"
)

// InsightPriority orders insights. Only high priority insights raise alerts.
type InsightPriority string

const (
	PriorityHigh   InsightPriority = "high"
	PriorityMedium InsightPriority = "medium"
)

// Insight is a prioritised alert derived from the current forecast.
type Insight struct {
	Type     InsightType     `json:"type"`
	Message  string          `json:"message"`
	Priority InsightPriority `json:"priority"`
	// Wards is set when the insight concerns specific wards only.
	Wards []string `json:"wards,omitempty"`
}

// InsightInput is everything the insight rules look at.
type InsightInput struct {
	TotalBeds         int
	OccupiedBeds      int
	DischargesNext24h int
	Wards             []WardForecast
}

// insightRule yields at most one insight.
type insightRule func(in InsightInput) (Insight, bool)

// insightRules run in this order; each rule is independent of the others.
var insightRules = []insightRule{
	highOccupancyRule,
	upcomingDischargesRule,
	criticalWardsRule,
}

// GenerateInsights evaluates every rule against in and keeps the ones that fire.
func GenerateInsights(in InsightInput) []Insight {
	insights := make([]Insight, 0, len(insightRules))
	for _, rule := range insightRules {
		if insight, ok := rule(in); ok {
			insights = append(insights, insight)
		}
	}
	return insights
}

func highOccupancyRule(in InsightInput) (Insight, bool) {
	if in.TotalBeds <= 0 || float64(in.OccupiedBeds)/float64(in.TotalBeds) <= 0.9 {
		return Insight{}, false
	}
	return Insight{
		Type:     InsightWarning,
		Message:  fmt.Sprintf("High occupancy alert: %d%% of beds occupied", percentage(int64(in.OccupiedBeds), int64(in.TotalBeds))),
		Priority: PriorityHigh,
	}, true
}

func upcomingDischargesRule(in InsightInput) (Insight, bool) {
	if in.DischargesNext24h < 3 {
		return Insight{}, false
	}
	return Insight{
		Type:     InsightInfo,
		Message:  fmt.Sprintf("%d beds expected to be available in next 24 hours", in.DischargesNext24h),
		Priority: PriorityMedium,
	}, true
}

func criticalWardsRule(in InsightInput) (Insight, bool) {
	var critical []string
	for _, w := range in.Wards {
		if w.OccupancyPercentage > 90 {
			critical = append(critical, w.Ward)
		}
	}
	if len(critical) == 0 {
		return Insight{}, false
	}
	return Insight{
		Type:     InsightWarning,
		Message:  "Critical capacity in " + strings.Join(critical, ", "),
		Priority: PriorityHigh,
		Wards:    critical,
	}, true
}
