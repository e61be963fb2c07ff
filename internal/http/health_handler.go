package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"insight-profile/internal/domain"
)

// StatsSource es lo que el health check necesita del servicio.
type StatsSource interface {
	Stats(ctx context.Context) (domain.CacheStats, error)
}

type HealthHandler struct {
	logger  *zap.Logger
	stats   StatsSource
	version string
}

func NewHealthHandler(logger *zap.Logger, stats StatsSource, version string) *HealthHandler {
	return &HealthHandler{logger: logger, stats: stats, version: version}
}

// Root maneja GET /.
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "insight-profile",
		"version": h.version,
		"status":  "running",
	})
}

// Health maneja GET /health. El estado degradado tambien responde 200.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	stats, err := h.stats.Stats(ctx)
	if err != nil {
		h.logger.Warn("health check: stats unavailable", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{
			"status":   "degraded",
			"database": "disconnected",
			"error":    "could not read cache statistics",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
		"stats":    stats,
	})
}
