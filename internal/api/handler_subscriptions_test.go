package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"bed-analytics-backend/internal/model"
)

func setupSubscriptionRouter(s *mockStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(nil, s, nil)
	r.GET("/api/subscriptions", handler.GetSubscription)
	r.PUT("/api/subscriptions", handler.PutSubscription)
	r.DELETE("/api/subscriptions", handler.DeleteSubscription)
	return r
}

func TestPutSubscription(t *testing.T) {
	var gotSub model.PushSubscription
	var gotWards []string
	router := setupSubscriptionRouter(&mockStore{
		UpsertSubscriptionFunc: func(ctx context.Context, sub model.PushSubscription, wards []string) error {
			gotSub, gotWards = sub, wards
			return nil
		},
	})

	body := `{"endpoint":"https://push.example.com/abc","p256dh":"key","auth":"secret","wards":["ICU","Surgery"]}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/api/subscriptions", bytes.NewBufferString(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "https://push.example.com/abc", gotSub.Endpoint)
	assert.Equal(t, "key", gotSub.P256DH)
	assert.Equal(t, []string{"ICU", "Surgery"}, gotWards)
}

func TestPutSubscription_BadRequest(t *testing.T) {
	router := setupSubscriptionRouter(&mockStore{})

	for _, body := range []string{"", `{"endpoint":"x"}`, `not json`} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPut, "/api/subscriptions", bytes.NewBufferString(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"invalid request"}`, w.Body.String())
	}
}

func TestPutSubscription_StoreError(t *testing.T) {
	router := setupSubscriptionRouter(&mockStore{
		UpsertSubscriptionFunc: func(ctx context.Context, sub model.PushSubscription, wards []string) error {
			return errors.New("db down")
		},
	})

	body := `{"endpoint":"e","p256dh":"k","auth":"a"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/api/subscriptions", bytes.NewBufferString(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"internal server error"}`, w.Body.String())
}

func TestGetSubscription(t *testing.T) {
	router := setupSubscriptionRouter(&mockStore{
		GetSubscriptionFunc: func(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
			// The raw, undecoded query value is used as the key.
			assert.Equal(t, "https%3A%2F%2Fpush.example.com%2Fabc", endpoint)
			return &model.PushSubscription{
				Endpoint: endpoint,
				Wards:    []model.SubscriptionWard{{Endpoint: endpoint, Ward: "ICU"}},
			}, nil
		},
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/subscriptions?endpoint=https%3A%2F%2Fpush.example.com%2Fabc", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"endpoint":"https%3A%2F%2Fpush.example.com%2Fabc","wards":["ICU"]}}`, w.Body.String())
}

func TestGetSubscription_Errors(t *testing.T) {
	router := setupSubscriptionRouter(&mockStore{})

	tests := []struct {
		name string
		url  string
		code int
	}{
		{"missing endpoint", "/api/subscriptions", http.StatusBadRequest},
		{"empty endpoint", "/api/subscriptions?endpoint=", http.StatusBadRequest},
		{"unknown endpoint", "/api/subscriptions?endpoint=nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, tt.url, nil)
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestDeleteSubscription(t *testing.T) {
	var deleted string
	router := setupSubscriptionRouter(&mockStore{
		DeleteSubscriptionFunc: func(ctx context.Context, endpoint string) error {
			deleted = endpoint
			return nil
		},
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/api/subscriptions", bytes.NewBufferString(`{"endpoint":"e-1"}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "e-1", deleted)
}

func TestRawQueryParam(t *testing.T) {
	v, found := rawQueryParam("a=1&endpoint=x%2By&b=2", "endpoint")
	assert.True(t, found)
	assert.Equal(t, "x%2By", v)

	_, found = rawQueryParam("a=1", "endpoint")
	assert.False(t, found)
}
