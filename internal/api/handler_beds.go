package api

import (
	"github.com/gin-gonic/gin"
)

// GetBeds handles GET /api/beds?status=&ward=.
func (h *Handler) GetBeds(c *gin.Context) {
	beds, err := h.engine.Beds(c.Request.Context(), c.Query("status"), c.Query("ward"))
	if err != nil {
		fromError(c, err)
		return
	}
	ok(c, beds)
}

// GetWards handles GET /api/wards.
func (h *Handler) GetWards(c *gin.Context) {
	wards, err := h.engine.Wards(c.Request.Context())
	if err != nil {
		fromError(c, err)
		return
	}
	ok(c, wards)
}
