package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"insight-profile/internal/identity"
	"insight-profile/internal/service"
)

// InsightHandler expone el pipeline de perfiles y las operaciones sobre el cache.
type InsightHandler struct {
	logger   *zap.Logger
	insights *service.InsightService
}

// NewInsightHandler crea una instancia de InsightHandler con dependencias necesarias.
func NewInsightHandler(logger *zap.Logger, insights *service.InsightService) *InsightHandler {
	return &InsightHandler{
		logger:   logger,
		insights: insights,
	}
}

// Analyze maneja POST /api/analyze.
func (h *InsightHandler) Analyze(c *gin.Context) {
	var req struct {
		LinkedInURL string `json:"linkedin_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid analyze request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	force := false
	if raw := c.Query("force_refresh"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "force_refresh must be a boolean"})
			return
		}
		force = parsed
	}

	report, err := h.insights.Analyze(c.Request.Context(), req.LinkedInURL, force)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ProfileExists maneja GET /api/profile-exists/*url. No dispara el pipeline.
func (h *InsightHandler) ProfileExists(c *gin.Context) {
	status, err := h.insights.Exists(c.Request.Context(), profileURLParam(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	resp := gin.H{
		"exists":        status.Exists,
		"sanitized_url": status.NormalizedKey,
	}
	if status.Profile != nil {
		resp["cached_at"] = status.Profile.CreatedAt
		resp["profile_id"] = status.Profile.ID
	}
	c.JSON(http.StatusOK, resp)
}

// ClearCache maneja DELETE /api/cache/*url.
func (h *InsightHandler) ClearCache(c *gin.Context) {
	key, deleted, err := h.insights.Invalidate(c.Request.Context(), profileURLParam(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found in cache"})
		return
	}
	if claims, ok := GetAdminClaims(c); ok {
		h.logger.Info("cache cleared by admin", zap.String("subject", claims.Subject), zap.String("canonical_key", key))
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cache cleared for " + key})
}

// ValidateURL maneja POST /api/validate-url.
func (h *InsightHandler) ValidateURL(c *gin.Context) {
	var req struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	key, err := identity.Normalize(req.URL)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"valid":        false,
			"original_url": req.URL,
			"error":        identity.Reason(err),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":         true,
		"original_url":  req.URL,
		"sanitized_url": key,
	})
}

// profileURLParam toma la URL del path comodin o, si falta, de ?url=.
// Los proxies suelen colapsar "https://" a "https:/" dentro del path.
func profileURLParam(c *gin.Context) string {
	raw := strings.TrimPrefix(c.Param("url"), "/")
	if raw == "" {
		return c.Query("url")
	}
	for _, scheme := range []string{"https:/", "http:/"} {
		if strings.HasPrefix(raw, scheme) && !strings.HasPrefix(raw, scheme+"/") {
			return scheme + "/" + raw[len(scheme):]
		}
	}
	return raw
}
