package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"insight-profile/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	insightH *InsightHandler,
	healthH *HealthHandler,
	adminTokens *service.AdminTokenService,
	corsOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y CORS.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), corsMiddleware(corsOrigins))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	base := r.Group("", jsonContentTypeMiddleware())
	base.GET("/", healthH.Root)
	base.GET("/health", healthH.Health)

	api := r.Group("/api", jsonContentTypeMiddleware())
	api.POST("/analyze", insightH.Analyze)
	api.POST("/validate-url", insightH.ValidateURL)
	// La URL del perfil va en el path o en ?url= ("/api/profile-exists/?url=...").
	api.GET("/profile-exists/*url", insightH.ProfileExists)
	api.DELETE("/cache/*url", AdminAuthMiddleware(adminTokens), insightH.ClearCache)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
