// File: internal/middleware/secret.go
package middleware

import (
	"crypto/subtle"

	"nexus_mapping_backend/internal/common"
	"nexus_mapping_backend/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminSecretMiddleware gates destructive admin endpoints behind the static
// X-Admin-Secret header. This trust path is independent of token auth so
// platform tooling can trigger resets without a Google identity.
func AdminSecretMiddleware(cfg *config.Config, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.AdminResetSecret == "" {
			logger.Error("ADMIN_RESET_SECRET is not configured; rejecting admin request")
			common.RespondWithError(c, common.ErrServerConfig)
			return
		}

		provided := c.GetHeader(common.AdminSecretHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(cfg.AdminResetSecret)) != 1 {
			logger.Warn("Admin secret mismatch", zap.String("ip", c.ClientIP()))
			common.RespondWithError(c, common.ErrForbidden.WithMessage("Forbidden: Invalid admin secret."))
			return
		}

		c.Next()
	}
}
