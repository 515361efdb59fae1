package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bed-analytics-backend/config"
	"bed-analytics-backend/internal/model"
	"bed-analytics-backend/internal/mw"
	"bed-analytics-backend/internal/store"
)

const testSecret = "test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestRouter(s store.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = testSecret
	return NewRouter(cfg, s, &webpush.Options{VAPIDPublicKey: "public-key"})
}

func doRequest(t *testing.T, r *gin.Engine, url, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func token(t *testing.T, role, ward string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mw.Claims{Role: role, Ward: ward}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

func icuStore() *mockStore {
	counts := map[model.BedStatus]int64{
		"":                   4,
		model.BedOccupied:    2,
		model.BedAvailable:   1,
		model.BedMaintenance: 1,
	}
	return &mockStore{
		CountSnapshotsFunc: func(ctx context.Context, f store.SnapshotFilter) (int64, error) {
			return counts[f.Status], nil
		},
		DistinctWardsFunc: func(ctx context.Context) ([]string, error) {
			return []string{"ICU"}, nil
		},
	}
}

func TestGetOccupancySummary(t *testing.T) {
	w, env := doRequest(t, newTestRouter(icuStore()), "/api/analytics/occupancy-summary", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"totalBeds":4,"occupied":2,"available":1,"maintenance":1,"reserved":0,"occupancyPercentage":50}`, string(env.Data))
}

func TestGetOccupancyByWard(t *testing.T) {
	s := &mockStore{
		ListSnapshotsFunc: func(ctx context.Context, f store.SnapshotFilter) ([]model.Bed, error) {
			return []model.Bed{
				{Code: "ICU-1", Ward: "ICU", Status: model.BedOccupied},
				{Code: "ICU-2", Ward: "ICU", Status: model.BedOccupied},
				{Code: "ICU-3", Ward: "ICU", Status: model.BedAvailable},
				{Code: "ICU-4", Ward: "ICU", Status: model.BedMaintenance},
			}, nil
		},
	}
	w, env := doRequest(t, newTestRouter(s), "/api/analytics/occupancy-by-ward", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"ward":"ICU","totalBeds":4,"occupied":2,"available":1,"maintenance":1,"reserved":0,"occupancyPercentage":50}]`, string(env.Data))
}

func TestGetOccupancySummary_UpstreamFailure(t *testing.T) {
	s := &mockStore{
		CountSnapshotsFunc: func(ctx context.Context, f store.SnapshotFilter) (int64, error) {
			return 0, errors.New("connection reset")
		},
	}
	w, env := doRequest(t, newTestRouter(s), "/api/analytics/occupancy-summary", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "internal server error", env.Error)
}

func TestGetBedHistory(t *testing.T) {
	b := model.Bed{ID: uuid.New(), Code: "ICU-1", Ward: "ICU", Status: model.BedOccupied}
	var gotPage store.Page
	s := &mockStore{
		ResolveBedFunc: func(ctx context.Context, idOrCode string) (*model.Bed, error) {
			if idOrCode == "ICU-1" {
				return &b, nil
			}
			return nil, store.ErrBedNotFound
		},
		ListBedHistoryFunc: func(ctx context.Context, bedID uuid.UUID, page store.Page) ([]model.StatusChangeEvent, error) {
			gotPage = page
			return []model.StatusChangeEvent{{ID: 7, BedID: bedID, ChangeType: model.ChangeAssigned}}, nil
		},
		CountEventsFunc: func(ctx context.Context, f store.EventFilter) (int64, error) {
			return 300, nil
		},
	}
	r := newTestRouter(s)

	w, env := doRequest(t, r, "/api/analytics/bed-history/ICU-1?limit=500&skip=abc", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, store.Page{Limit: 200, Skip: 0}, gotPage)

	var history struct {
		Bed struct {
			BedCode string `json:"bedCode"`
		} `json:"bed"`
		History    []map[string]any `json:"history"`
		Pagination struct {
			Total   int64 `json:"total"`
			Limit   int   `json:"limit"`
			HasMore bool  `json:"hasMore"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &history))
	assert.Equal(t, "ICU-1", history.Bed.BedCode)
	assert.Len(t, history.History, 1)
	assert.Equal(t, "assigned", history.History[0]["statusChange"])
	assert.Equal(t, 200, history.Pagination.Limit)
	assert.True(t, history.Pagination.HasMore)

	w, env = doRequest(t, r, "/api/analytics/bed-history/ICU-9", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, env.Error, "ICU-9")
}

func TestGetOccupancyTrends_InvalidArguments(t *testing.T) {
	r := newTestRouter(icuStore())

	for _, url := range []string{
		"/api/analytics/occupancy-trends?granularity=monthly",
		"/api/analytics/occupancy-trends?startDate=nope",
		"/api/analytics/occupancy-trends?startDate=2024-03-02&endDate=2024-03-01",
	} {
		w, env := doRequest(t, r, url, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, url)
		assert.False(t, env.Success)
		assert.NotEmpty(t, env.Error)
	}
}

func TestGetOccupancyTrends(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := icuStore()
	s.ListEventsFunc = func(ctx context.Context, f store.EventFilter) ([]model.StatusChangeEvent, error) {
		assert.Equal(t, start, f.From)
		return []model.StatusChangeEvent{
			{ChangeType: model.ChangeAssigned, Timestamp: start.Add(time.Hour)},
			{ChangeType: model.ChangeReleased, Timestamp: start.Add(2 * time.Hour)},
		}, nil
	}

	w, env := doRequest(t, newTestRouter(s), "/api/analytics/occupancy-trends?startDate=2024-03-01&endDate=2024-03-02", "")
	require.Equal(t, http.StatusOK, w.Code)

	var trends struct {
		TotalBeds int64 `json:"totalBeds"`
		Trends    []struct {
			Period        string `json:"period"`
			Count         int    `json:"count"`
			AssignedCount int    `json:"assignedCount"`
			ReleasedCount int    `json:"releasedCount"`
		} `json:"trends"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &trends))
	assert.Equal(t, int64(4), trends.TotalBeds)
	require.Len(t, trends.Trends, 1)
	assert.Equal(t, "2024-03-01", trends.Trends[0].Period)
	assert.Equal(t, 2, trends.Trends[0].Count)
}

func TestGetForecast(t *testing.T) {
	s := &mockStore{
		ListSnapshotsFunc: func(ctx context.Context, f store.SnapshotFilter) ([]model.Bed, error) {
			return []model.Bed{
				{ID: uuid.New(), Code: "ICU-1", Ward: "ICU", Status: model.BedOccupied, UpdatedAt: time.Now().Add(-80 * time.Hour)},
				{ID: uuid.New(), Code: "ICU-2", Ward: "ICU", Status: model.BedAvailable, UpdatedAt: time.Now()},
			}, nil
		},
	}

	w, env := doRequest(t, newTestRouter(s), "/api/analytics/forecasting", "")
	require.Equal(t, http.StatusOK, w.Code)

	var forecast struct {
		CurrentMetrics struct {
			TotalBeds    int `json:"totalBeds"`
			OccupiedBeds int `json:"occupiedBeds"`
		} `json:"currentMetrics"`
		AverageLengthOfStay struct {
			Days float64 `json:"days"`
		} `json:"averageLengthOfStay"`
		ExpectedDischarges struct {
			Next24Hours int `json:"next24Hours"`
			Total       int `json:"total"`
		} `json:"expectedDischarges"`
		Timeline []json.RawMessage `json:"timeline"`
		Metadata struct {
			ForecastHorizon string `json:"forecastHorizon"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &forecast))
	assert.Equal(t, 2, forecast.CurrentMetrics.TotalBeds)
	assert.Equal(t, 1, forecast.CurrentMetrics.OccupiedBeds)
	assert.Equal(t, 3.5, forecast.AverageLengthOfStay.Days)
	assert.Equal(t, 1, forecast.ExpectedDischarges.Next24Hours)
	assert.Len(t, forecast.Timeline, 12)
	assert.Equal(t, "72 hours", forecast.Metadata.ForecastHorizon)
}

func TestGetCleaningPerformance_Auth(t *testing.T) {
	var gotWard string
	s := &mockStore{
		ListCleaningRecordsFunc: func(ctx context.Context, f store.CleaningFilter) ([]model.CleaningRecord, error) {
			gotWard = f.Ward
			return nil, nil
		},
	}
	r := newTestRouter(s)

	tests := []struct {
		name     string
		url      string
		token    string
		wantCode int
		wantWard string
	}{
		{"no token", "/api/analytics/cleaning-performance", "", http.StatusUnauthorized, ""},
		{"wrong role", "/api/analytics/cleaning-performance", token(t, "nurse", ""), http.StatusForbidden, ""},
		{"admin picks ward", "/api/analytics/cleaning-performance?ward=Surgery", token(t, mw.RoleHospitalAdmin, ""), http.StatusOK, "Surgery"},
		{"manager forced to own ward", "/api/analytics/cleaning-performance?ward=Surgery", token(t, mw.RoleManager, "ICU"), http.StatusOK, "ICU"},
		{"unscoped manager", "/api/analytics/cleaning-performance?ward=Surgery", token(t, mw.RoleManager, ""), http.StatusOK, "Surgery"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotWard = "unset"
			w, env := doRequest(t, r, tt.url, tt.token)
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.True(t, env.Success)
				assert.Equal(t, tt.wantWard, gotWard)
			} else {
				assert.Equal(t, "unset", gotWard)
			}
		})
	}
}

func TestGetCleaningPerformance_InvalidRange(t *testing.T) {
	w, env := doRequest(t, newTestRouter(&mockStore{}),
		"/api/analytics/cleaning-performance?startDate=2024-03-05&endDate=2024-03-01",
		token(t, mw.RoleHospitalAdmin, ""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid argument: start date cannot be after end date", env.Error)
}

func TestGetBeds(t *testing.T) {
	calls := 0
	s := &mockStore{
		ListSnapshotsFunc: func(ctx context.Context, f store.SnapshotFilter) ([]model.Bed, error) {
			calls++
			assert.Equal(t, model.BedOccupied, f.Status)
			return []model.Bed{{Code: "ICU-1", Ward: "ICU", Status: model.BedOccupied}}, nil
		},
	}
	r := newTestRouter(s)

	for i := 0; i < 2; i++ {
		w, env := doRequest(t, r, "/api/beds?status=occupied", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(env.Data), `"bedCode":"ICU-1"`)
	}
	assert.Equal(t, 1, calls, "second request should be served from cache")

	w, env := doRequest(t, r, "/api/beds?status=broken", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "invalid status")
}

func TestGetWards(t *testing.T) {
	s := &mockStore{
		DistinctWardsFunc: func(ctx context.Context) ([]string, error) {
			return []string{"Surgery", "cardiology", "ICU"}, nil
		},
	}
	w, env := doRequest(t, newTestRouter(s), "/api/wards", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["cardiology","ICU","Surgery"]`, string(env.Data))
}

func TestGetVAPIDPublicKey(t *testing.T) {
	w, env := doRequest(t, newTestRouter(&mockStore{}), "/api/vapid_public_key", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"public_key":"public-key"}`, string(env.Data))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/key", NewHandler(nil, nil, nil).GetVAPIDPublicKey)
	w = httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/key", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
