package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Pinger reports whether an optional dependency is reachable
type Pinger interface {
	IsAvailable() bool
}

// HealthHandler reports liveness and dependency status
type HealthHandler struct {
	db    *gorm.DB
	cache Pinger
}

// NewHealthHandler creates a new HealthHandler; cache may be nil
func NewHealthHandler(db *gorm.DB, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Health godoc
// @Summary      Health check
// @Tags         ops
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      503  {object}  map[string]any
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	database := "ok"
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		database = "unavailable"
		status = http.StatusServiceUnavailable
	}

	cache := "disabled"
	if h.cache != nil && h.cache.IsAvailable() {
		cache = "ok"
	}

	c.JSON(status, gin.H{
		"status":   http.StatusText(status),
		"service":  "ventures-backend",
		"database": database,
		"cache":    cache,
		"time":     time.Now().Unix(),
	})
}
