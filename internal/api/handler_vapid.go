package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetVAPIDPublicKey returns the VAPID public key clients subscribe with.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		fail(c, http.StatusServiceUnavailable, "vapid keys are not configured")
		return
	}

	ok(c, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}
