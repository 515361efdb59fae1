package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"bed-analytics-backend/internal/analytics"
)

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}

// fromError maps an engine error onto its HTTP status.
func fromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, analytics.ErrInvalidArgument):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, analytics.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error())
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		fail(c, http.StatusInternalServerError, "internal server error")
	}
}
