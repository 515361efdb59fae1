package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"bed-analytics-backend/internal/analytics"
	"bed-analytics-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	engine  *analytics.Engine
	store   store.Store
	webpush *webpush.Options
	now     func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(engine *analytics.Engine, s store.Store, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		engine:  engine,
		store:   s,
		webpush: webpushOptions,
		now:     func() time.Time { return time.Now().UTC() },
	}
}
