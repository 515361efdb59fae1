package analytics

import "math"

// roundInt rounds half up, matching how the dashboards have always displayed values.
func roundInt(x float64) int {
	return int(math.Floor(x + 0.5))
}

// round1 rounds to one decimal place, half up.
func round1(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}

// percentage returns round(part/total*100), or 0 when total is zero.
func percentage(part, total int64) int {
	if total <= 0 {
		return 0
	}
	return roundInt(float64(part) / float64(total) * 100)
}
