package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bed-analytics-backend/internal/model"
)

var (
	// ErrBedNotFound is returned when a bed resolves by neither id nor code.
	ErrBedNotFound = errors.New("bed not found")
	// ErrSubscriptionNotFound is returned for an unknown push endpoint.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// Store defines the interface for all database operations.
type Store interface {
	ListEvents(ctx context.Context, f EventFilter) ([]model.StatusChangeEvent, error)
	CountEvents(ctx context.Context, f EventFilter) (int64, error)
	ListBedHistory(ctx context.Context, bedID uuid.UUID, page Page) ([]model.StatusChangeEvent, error)

	CountSnapshots(ctx context.Context, f SnapshotFilter) (int64, error)
	ListSnapshots(ctx context.Context, f SnapshotFilter) ([]model.Bed, error)
	DistinctWards(ctx context.Context) ([]string, error)
	ResolveBed(ctx context.Context, idOrCode string) (*model.Bed, error)

	ListCleaningRecords(ctx context.Context, f CleaningFilter) ([]model.CleaningRecord, error)

	UpsertSubscription(ctx context.Context, sub model.PushSubscription, wards []string) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	ListSubscriptionsForWards(ctx context.Context, wards []string) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) eventQuery(ctx context.Context, f EventFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&model.StatusChangeEvent{})
	if f.BedID != nil {
		q = q.Where("bed_id = ?", *f.BedID)
	}
	if len(f.ChangeTypes) > 0 {
		q = q.Where("change_type IN ?", f.ChangeTypes)
	}
	if !f.From.IsZero() {
		q = q.Where("timestamp >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("timestamp <= ?", f.To)
	}
	return q
}

// ListEvents returns matching log entries ordered by bed, then time.
func (s *gormStore) ListEvents(ctx context.Context, f EventFilter) ([]model.StatusChangeEvent, error) {
	var events []model.StatusChangeEvent
	if err := s.eventQuery(ctx, f).Order("bed_id ASC").Order("timestamp ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list status changes: %w", err)
	}
	return events, nil
}

func (s *gormStore) CountEvents(ctx context.Context, f EventFilter) (int64, error) {
	var n int64
	if err := s.eventQuery(ctx, f).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count status changes: %w", err)
	}
	return n, nil
}

// ListBedHistory returns one page of a bed's log, newest first, with actors loaded.
func (s *gormStore) ListBedHistory(ctx context.Context, bedID uuid.UUID, page Page) ([]model.StatusChangeEvent, error) {
	var events []model.StatusChangeEvent
	err := s.db.WithContext(ctx).
		Preload("Actor").
		Where("bed_id = ?", bedID).
		Order("timestamp DESC").
		Limit(page.Limit).
		Offset(page.Skip).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list history for bed %s: %w", bedID, err)
	}
	return events, nil
}

func (s *gormStore) snapshotQuery(ctx context.Context, f SnapshotFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&model.Bed{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Ward != "" {
		q = q.Where("ward = ?", f.Ward)
	}
	return q
}

func (s *gormStore) CountSnapshots(ctx context.Context, f SnapshotFilter) (int64, error) {
	var n int64
	if err := s.snapshotQuery(ctx, f).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count beds: %w", err)
	}
	return n, nil
}

// ListSnapshots returns matching beds ordered by ward, then bed code.
func (s *gormStore) ListSnapshots(ctx context.Context, f SnapshotFilter) ([]model.Bed, error) {
	var beds []model.Bed
	if err := s.snapshotQuery(ctx, f).Order("ward ASC").Order("code ASC").Find(&beds).Error; err != nil {
		return nil, fmt.Errorf("list beds: %w", err)
	}
	return beds, nil
}

func (s *gormStore) DistinctWards(ctx context.Context) ([]string, error) {
	var wards []string
	if err := s.db.WithContext(ctx).Model(&model.Bed{}).Distinct().Pluck("ward", &wards).Error; err != nil {
		return nil, fmt.Errorf("distinct wards: %w", err)
	}
	return wards, nil
}

// ResolveBed looks a bed up by primary key first and falls back to its code.
func (s *gormStore) ResolveBed(ctx context.Context, idOrCode string) (*model.Bed, error) {
	var bed model.Bed
	if id, err := uuid.Parse(idOrCode); err == nil {
		err := s.db.WithContext(ctx).First(&bed, "id = ?", id).Error
		if err == nil {
			return &bed, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("resolve bed %q: %w", idOrCode, err)
		}
	}

	err := s.db.WithContext(ctx).First(&bed, "code = ?", idOrCode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBedNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve bed %q: %w", idOrCode, err)
	}
	return &bed, nil
}

// ListCleaningRecords returns matching cleanings, most recent start first, with staff loaded.
func (s *gormStore) ListCleaningRecords(ctx context.Context, f CleaningFilter) ([]model.CleaningRecord, error) {
	q := s.db.WithContext(ctx).Preload("AssignedTo").Preload("CompletedBy")
	if f.Ward != "" {
		q = q.Where("ward = ?", f.Ward)
	}
	if !f.From.IsZero() {
		q = q.Where("start_time >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("start_time <= ?", f.To)
	}

	var records []model.CleaningRecord
	if err := q.Order("start_time DESC").Order("id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list cleaning records: %w", err)
	}
	return records, nil
}

// UpsertSubscription creates or replaces a subscription together with its ward scope.
func (s *gormStore) UpsertSubscription(ctx context.Context, sub model.PushSubscription, wards []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub.Wards = nil
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&sub).Error; err != nil {
			return fmt.Errorf("upsert subscription: %w", err)
		}

		if err := tx.Where("endpoint = ?", sub.Endpoint).Delete(&model.SubscriptionWard{}).Error; err != nil {
			return fmt.Errorf("clear subscription wards: %w", err)
		}

		if len(wards) == 0 {
			return nil
		}
		rows := make([]model.SubscriptionWard, 0, len(wards))
		seen := make(map[string]bool, len(wards))
		for _, w := range wards {
			if w == "" || seen[w] {
				continue
			}
			seen[w] = true
			rows = append(rows, model.SubscriptionWard{Endpoint: sub.Endpoint, Ward: w})
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("save subscription wards: %w", err)
		}
		return nil
	})
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).Preload("Wards").First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return &sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("endpoint = ?", endpoint).Delete(&model.SubscriptionWard{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
			return err
		}
		log.Printf("Deleted push subscription %s", endpoint)
		return nil
	})
}

// ListSubscriptionsForWards returns subscribers interested in any of the wards.
// Subscribers without a ward scope always match; no wards selects everyone.
func (s *gormStore) ListSubscriptionsForWards(ctx context.Context, wards []string) ([]model.PushSubscription, error) {
	q := s.db.WithContext(ctx).Preload("Wards")
	if len(wards) > 0 {
		q = q.Where(
			"NOT EXISTS (SELECT 1 FROM subscription_wards sw WHERE sw.endpoint = push_subscriptions.endpoint) "+
				"OR EXISTS (SELECT 1 FROM subscription_wards sw WHERE sw.endpoint = push_subscriptions.endpoint AND sw.ward IN ?)",
			wards,
		)
	}

	var subs []model.PushSubscription
	if err := q.Order("endpoint ASC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}
