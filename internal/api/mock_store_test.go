package api

import (
	"context"

	"github.com/google/uuid"

	"bed-analytics-backend/internal/model"
	"bed-analytics-backend/internal/store"
)

// mockStore is a mock implementation of the store.Store interface. Nil funcs
// return zero values.
type mockStore struct {
	ListEventsFunc                func(ctx context.Context, f store.EventFilter) ([]model.StatusChangeEvent, error)
	CountEventsFunc               func(ctx context.Context, f store.EventFilter) (int64, error)
	ListBedHistoryFunc            func(ctx context.Context, bedID uuid.UUID, page store.Page) ([]model.StatusChangeEvent, error)
	CountSnapshotsFunc            func(ctx context.Context, f store.SnapshotFilter) (int64, error)
	ListSnapshotsFunc             func(ctx context.Context, f store.SnapshotFilter) ([]model.Bed, error)
	DistinctWardsFunc             func(ctx context.Context) ([]string, error)
	ResolveBedFunc                func(ctx context.Context, idOrCode string) (*model.Bed, error)
	ListCleaningRecordsFunc       func(ctx context.Context, f store.CleaningFilter) ([]model.CleaningRecord, error)
	UpsertSubscriptionFunc        func(ctx context.Context, sub model.PushSubscription, wards []string) error
	GetSubscriptionFunc           func(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscriptionFunc        func(ctx context.Context, endpoint string) error
	ListSubscriptionsForWardsFunc func(ctx context.Context, wards []string) ([]model.PushSubscription, error)
}

func (m *mockStore) ListEvents(ctx context.Context, f store.EventFilter) ([]model.StatusChangeEvent, error) {
	if m.ListEventsFunc == nil {
		return nil, nil
	}
	return m.ListEventsFunc(ctx, f)
}

func (m *mockStore) CountEvents(ctx context.Context, f store.EventFilter) (int64, error) {
	if m.CountEventsFunc == nil {
		return 0, nil
	}
	return m.CountEventsFunc(ctx, f)
}

func (m *mockStore) ListBedHistory(ctx context.Context, bedID uuid.UUID, page store.Page) ([]model.StatusChangeEvent, error) {
	if m.ListBedHistoryFunc == nil {
		return nil, nil
	}
	return m.ListBedHistoryFunc(ctx, bedID, page)
}

func (m *mockStore) CountSnapshots(ctx context.Context, f store.SnapshotFilter) (int64, error) {
	if m.CountSnapshotsFunc == nil {
		return 0, nil
	}
	return m.CountSnapshotsFunc(ctx, f)
}

func (m *mockStore) ListSnapshots(ctx context.Context, f store.SnapshotFilter) ([]model.Bed, error) {
	if m.ListSnapshotsFunc == nil {
		return nil, nil
	}
	return m.ListSnapshotsFunc(ctx, f)
}

func (m *mockStore) DistinctWards(ctx context.Context) ([]string, error) {
	if m.DistinctWardsFunc == nil {
		return nil, nil
	}
	return m.DistinctWardsFunc(ctx)
}

func (m *mockStore) ResolveBed(ctx context.Context, idOrCode string) (*model.Bed, error) {
	if m.ResolveBedFunc == nil {
		return nil, store.ErrBedNotFound
	}
	return m.ResolveBedFunc(ctx, idOrCode)
}

func (m *mockStore) ListCleaningRecords(ctx context.Context, f store.CleaningFilter) ([]model.CleaningRecord, error) {
	if m.ListCleaningRecordsFunc == nil {
		return nil, nil
	}
	return m.ListCleaningRecordsFunc(ctx, f)
}

func (m *mockStore) UpsertSubscription(ctx context.Context, sub model.PushSubscription, wards []string) error {
	if m.UpsertSubscriptionFunc == nil {
		return nil
	}
	return m.UpsertSubscriptionFunc(ctx, sub, wards)
}

func (m *mockStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	if m.GetSubscriptionFunc == nil {
		return nil, store.ErrSubscriptionNotFound
	}
	return m.GetSubscriptionFunc(ctx, endpoint)
}

func (m *mockStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	if m.DeleteSubscriptionFunc == nil {
		return nil
	}
	return m.DeleteSubscriptionFunc(ctx, endpoint)
}

func (m *mockStore) ListSubscriptionsForWards(ctx context.Context, wards []string) ([]model.PushSubscription, error) {
	if m.ListSubscriptionsForWardsFunc == nil {
		return nil, nil
	}
	return m.ListSubscriptionsForWardsFunc(ctx, wards)
}
