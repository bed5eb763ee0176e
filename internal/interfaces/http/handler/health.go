package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports readiness of a backing dependency
type HealthChecker interface {
	Ping() error
}

// HealthHandler handles liveness and readiness endpoints
type HealthHandler struct {
	BaseHandler
	db HealthChecker
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db HealthChecker) *HealthHandler {
	return &HealthHandler{db: db}
}

// RegisterRoutes registers health endpoints
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.GET("/ready", h.Ready)
}

// Health reports process liveness
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the database is reachable
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
