package notification

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"bed-analytics-backend/internal/model"
	"bed-analytics-backend/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Alert is a capacity alert fanned out to push subscribers. An empty Wards
// list means the alert concerns the whole hospital.
type Alert struct {
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Priority  string    `json:"priority"`
	Wards     []string  `json:"wards,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Alert
	store   store.Store
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Alert, size),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case alert := <-wp.jobs:
			log.Printf("Worker %d processing alert %q", id, alert.Body)
			wp.sendAlert(ctx, alert)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an alert, waiting for room or until ctx is done.
func (wp *WorkerPool) Dispatch(ctx context.Context, alert Alert) error {
	select {
	case wp.jobs <- alert:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Alert {
	return wp.jobs
}

// sendAlert delivers alert to every subscriber whose ward scope matches.
func (wp *WorkerPool) sendAlert(ctx context.Context, alert Alert) {
	subscriptions, err := wp.store.ListSubscriptionsForWards(ctx, alert.Wards)
	if err != nil {
		log.Printf("Error fetching subscriptions for alert %q: %v", alert.Body, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		log.Printf("Error encoding alert %q: %v", alert.Body, err)
		return
	}

	log.Printf("Sending %d notifications for alert %q", len(subscriptions), alert.Body)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
