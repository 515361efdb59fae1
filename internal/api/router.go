package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"bed-analytics-backend/config"
	"bed-analytics-backend/internal/analytics"
	"bed-analytics-backend/internal/mw"
	"bed-analytics-backend/internal/store"
)

const defaultCacheTTL = 5 * time.Minute

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(analytics.NewEngine(s), s, webpushOptions)

	limit := rate.Limit(cfg.Server.RateLimitPerSec)
	if limit <= 0 {
		limit = rate.Inf
	}
	rateLimiter := mw.RateLimiter(limit, cfg.Server.RateLimitBurst)

	// Only bed and ward listings are cached; analytics always recompute.
	ttl := cfg.Server.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/beds", caching, handler.GetBeds)
		api.GET("/wards", caching, handler.GetWards)

		analyticsGroup := api.Group("/analytics")
		analyticsGroup.GET("/occupancy-summary", handler.GetOccupancySummary)
		analyticsGroup.GET("/occupancy-by-ward", handler.GetOccupancyByWard)
		analyticsGroup.GET("/bed-history/:bedId", handler.GetBedHistory)
		analyticsGroup.GET("/occupancy-trends", handler.GetOccupancyTrends)
		analyticsGroup.GET("/forecasting", handler.GetForecast)
		analyticsGroup.GET("/cleaning-performance",
			mw.Auth(cfg.Auth.JWTSecret),
			mw.RequireRole(mw.RoleManager, mw.RoleHospitalAdmin),
			handler.GetCleaningPerformance,
		)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
