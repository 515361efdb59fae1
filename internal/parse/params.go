package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"bed-analytics-backend/internal/model"
)

// Granularity is the bucket width of an occupancy trend.
type Granularity string

const (
	Hourly Granularity = "hourly"
	Daily  Granularity = "daily"
	Weekly Granularity = "weekly"
)

var (
	// Leading integer, as accepted by a lenient "parse the number prefix" reader.
	intPrefixRe = regexp.MustCompile(`^\s*([+-]?\d+)`)

	instantLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
)

// Instant parses an ISO-8601 timestamp. Values without an offset are read as UTC.
func Instant(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use ISO 8601 format (e.g., 2025-11-05T00:00:00Z)", raw)
}

// ParseGranularity validates a trend granularity. An empty value means daily.
func ParseGranularity(raw string) (Granularity, error) {
	switch g := Granularity(strings.TrimSpace(raw)); g {
	case "":
		return Daily, nil
	case Hourly, Daily, Weekly:
		return g, nil
	default:
		return "", fmt.Errorf("invalid granularity %q: must be one of: hourly, daily, weekly", raw)
	}
}

// IntOr reads the leading integer of raw, returning def when there is none or it is zero.
func IntOr(raw string, def int) int {
	m := intPrefixRe.FindStringSubmatch(raw)
	if m == nil {
		return def
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n == 0 {
		return def
	}
	return n
}

// BedStatus validates an optional bed status filter. Empty means no filter.
func BedStatus(raw string) (model.BedStatus, error) {
	s := model.BedStatus(strings.TrimSpace(raw))
	if s == "" || s.Valid() {
		return s, nil
	}
	return "", fmt.Errorf("invalid status %q: must be one of: available, occupied, maintenance, reserved", raw)
}
