// Package monitor periodically re-evaluates the discharge forecast and pushes
// new high-priority capacity insights to subscribers.
package monitor

import (
	"context"
	"log"
	"time"

	"github.com/patrickmn/go-cache"

	"bed-analytics-backend/config"
	"bed-analytics-backend/internal/analytics"
	"bed-analytics-backend/internal/notification"
)

const alertTitle = "Bed capacity alert"

// Forecaster produces the forecast whose insights drive alerts.
type Forecaster interface {
	Forecast(ctx context.Context, now time.Time) (*analytics.Forecast, error)
}

// Dispatcher queues an alert for delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, alert notification.Alert) error
}

// Service runs the capacity check loop.
type Service struct {
	cfg        config.AlertsConfig
	forecaster Forecaster
	dispatcher Dispatcher
	sent       *cache.Cache
	now        func() time.Time
}

// NewService creates a capacity alert monitor. An insight is not re-sent while
// the same message is within cfg.Cooldown of its last dispatch.
func NewService(cfg config.AlertsConfig, f Forecaster, d Dispatcher) *Service {
	return &Service{
		cfg:        cfg,
		forecaster: f,
		dispatcher: d,
		sent:       cache.New(cfg.Cooldown, 2*cfg.Cooldown),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run checks capacity immediately and then every cfg.Interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Capacity alerts are disabled. Not starting.")
		return
	}
	log.Println("Starting capacity alert monitor...")

	s.runOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Capacity alert monitor shutting down.")
			return
		case <-timer.C:
			s.runOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

func (s *Service) runOnce(ctx context.Context) {
	n, err := s.CheckOnce(ctx)
	if err != nil {
		log.Printf("Capacity check failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Dispatched %d capacity alerts", n)
	}
}

// CheckOnce computes a fresh forecast and dispatches every high-priority
// insight not already sent within the cooldown. It returns how many alerts
// were dispatched.
func (s *Service) CheckOnce(ctx context.Context) (int, error) {
	now := s.now()
	forecast, err := s.forecaster.Forecast(ctx, now)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, insight := range forecast.Insights {
		if insight.Priority != analytics.PriorityHigh {
			continue
		}
		if _, found := s.sent.Get(insight.Message); found {
			continue
		}

		alert := notification.Alert{
			Title:     alertTitle,
			Body:      insight.Message,
			Priority:  string(insight.Priority),
			Wards:     insight.Wards,
			Timestamp: now,
		}
		if err := s.dispatcher.Dispatch(ctx, alert); err != nil {
			return dispatched, err
		}
		s.sent.Set(insight.Message, now, cache.DefaultExpiration)
		dispatched++
	}
	return dispatched, nil
}
