package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bed-analytics-backend/internal/model"
	"bed-analytics-backend/internal/store"
)

type putSubscriptionRequest struct {
	Endpoint string   `json:"endpoint" binding:"required"`
	P256DH   string   `json:"p256dh" binding:"required"`
	Auth     string   `json:"auth" binding:"required"`
	Wards    []string `json:"wards"`
}

// PutSubscription creates or replaces a subscription and its ward scope.
// An empty ward list subscribes to every capacity alert.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	sub := model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}
	if err := h.store.UpsertSubscription(c.Request.Context(), sub, req.Wards); err != nil {
		fromError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true})
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes a subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.store.DeleteSubscription(c.Request.Context(), req.Endpoint); err != nil {
		fromError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// rawQueryParam reads key from the raw query without URL-decoding it, so the
// endpoint matches byte for byte what the browser registered.
func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(kv, key+"=") {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

// GetSubscription returns the wards an endpoint is subscribed to.
func (h *Handler) GetSubscription(c *gin.Context) {
	raw, found := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !found || raw == "" {
		fail(c, http.StatusBadRequest, "endpoint is required")
		return
	}

	sub, err := h.store.GetSubscription(c.Request.Context(), raw)
	if errors.Is(err, store.ErrSubscriptionNotFound) {
		fail(c, http.StatusNotFound, "subscription not found")
		return
	}
	if err != nil {
		fromError(c, err)
		return
	}

	ok(c, gin.H{"endpoint": sub.Endpoint, "wards": sub.WardNames()})
}
