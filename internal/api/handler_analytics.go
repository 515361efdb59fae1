package api

import (
	"github.com/gin-gonic/gin"

	"bed-analytics-backend/internal/analytics"
	"bed-analytics-backend/internal/mw"
	"bed-analytics-backend/internal/parse"
)

// GetOccupancySummary handles GET /api/analytics/occupancy-summary.
func (h *Handler) GetOccupancySummary(c *gin.Context) {
	summary, err := h.engine.Summary(c.Request.Context())
	if err != nil {
		fromError(c, err)
		return
	}
	ok(c, summary)
}

// GetOccupancyByWard handles GET /api/analytics/occupancy-by-ward.
func (h *Handler) GetOccupancyByWard(c *gin.Context) {
	wards, err := h.engine.WardBreakdown(c.Request.Context())
	if err != nil {
		fromError(c, err)
		return
	}
	ok(c, wards)
}

// GetBedHistory handles GET /api/analytics/bed-history/:bedId.
func (h *Handler) GetBedHistory(c *gin.Context) {
	history, err := h.engine.BedHistory(c.Request.Context(), analytics.HistoryQuery{
		Bed:   c.Param("bedId"),
		Limit: parse.IntOr(c.Query("limit"), analytics.DefaultHistoryLimit),
		Skip:  parse.IntOr(c.Query("skip"), 0),
	})
	if err != nil {
		fromError(c, err)
		return
	}
	ok(c, history)
}

// GetOccupancyTrends handles GET /api/analytics/occupancy-trends.
func (h *Handler) GetOccupancyTrends(c *gin.Context) {
	trends, err := h.engine.Trends(c.Request.Context(), h.now(), analytics.TrendQuery{
		StartDate:   c.Query("startDate"),
		EndDate:     c.Query("endDate"),
		Granularity: c.Query("granularity"),
	})
	if err != nil {
		fromError(c, err)
		return
	}
	ok(c, trends)
}

// GetForecast handles GET /api/analytics/forecasting.
func (h *Handler) GetForecast(c *gin.Context) {
	forecast, err := h.engine.Forecast(c.Request.Context(), h.now())
	if err != nil {
		fromError(c, err)
		return
	}
	ok(c, forecast)
}

// GetCleaningPerformance handles GET /api/analytics/cleaning-performance.
// A ward-scoped manager only ever sees their own ward.
func (h *Handler) GetCleaningPerformance(c *gin.Context) {
	ward := c.Query("ward")
	if scoped := mw.ScopedWard(c); scoped != "" {
		ward = scoped
	}

	perf, err := h.engine.CleaningPerformance(c.Request.Context(), h.now(), analytics.CleaningQuery{
		Ward:      ward,
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Period:    c.Query("period"),
	})
	if err != nil {
		fromError(c, err)
		return
	}
	ok(c, perf)
}
