package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"insight-profile/internal/identity"
	"insight-profile/internal/upstream"
)

// writeError traduce los errores visibles al llamador a un status HTTP.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		logger.Warn("request rejected", zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, body)
}

func errorResponse(err error) (int, gin.H) {
	if errors.Is(err, identity.ErrInvalidIdentity) {
		return http.StatusBadRequest, gin.H{"error": identity.Reason(err)}
	}

	if ue, ok := upstream.As(err); ok {
		body := gin.H{"error": ue.Message, "provider": ue.Provider}
		switch ue.Kind {
		case upstream.KindTimeout:
			return http.StatusGatewayTimeout, body
		case upstream.KindRejected:
			if ue.StatusCode >= 400 && ue.StatusCode < 500 {
				return ue.StatusCode, body
			}
			return http.StatusBadGateway, body
		default:
			return http.StatusServiceUnavailable, body
		}
	}

	return http.StatusInternalServerError, gin.H{"error": "internal error"}
}
