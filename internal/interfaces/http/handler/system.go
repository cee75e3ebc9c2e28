package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the database connection is alive
type Pinger interface {
	Ping() error
}

// SystemHandler serves liveness and readiness endpoints
type SystemHandler struct {
	db      Pinger
	version string
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger, version string) *SystemHandler {
	return &SystemHandler{
		db:      db,
		version: version,
	}
}

// Healthz handles GET /healthz: process liveness plus a DB ping
func (h *SystemHandler) Healthz(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"reason": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
	})
}
