// File: internal/middleware/auth.go
package middleware

import (
	"errors"
	"strings"

	"nexus_mapping_backend/internal/auth"
	"nexus_mapping_backend/internal/common"
	"nexus_mapping_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware creates a Gin middleware that verifies Google ID tokens.
// A missing or garbled Authorization header is 401; any rejected token is 403
// with a message naming the rejection reason. The caller's role is looked up
// in the user directory by token subject and defaults to viewer when no row
// exists yet.
func AuthMiddleware(verifier shared.TokenVerifier, users shared.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(common.AuthorizationHeader)
		if authHeader == "" {
			logger.Debug("Authorization header missing")
			common.RespondWithError(c, common.ErrUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], common.AuthorizationTypeBearer) || parts[1] == "" {
			logger.Debug("Authorization header format invalid")
			common.RespondWithError(c, common.ErrUnauthorized)
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), parts[1])
		if err != nil {
			logger.Warn("Token verification failed", zap.Error(err))
			common.RespondWithError(c, common.ErrForbidden.WithMessage(rejectionMessage(err)))
			return
		}

		role := common.RoleViewer
		usr, err := users.GetByID(c.Request.Context(), claims.Subject)
		switch {
		case err == nil:
			role = usr.Role
		case errors.Is(err, common.ErrNotFound):
			// Identity not synced yet; treat as viewer.
		default:
			logger.Warn("Role lookup failed, defaulting to viewer",
				zap.Error(err), zap.String("subject", claims.Subject))
		}

		c.Set(common.UserIDKey, claims.Subject)
		c.Set(common.UserEmailKey, claims.Email)
		c.Set(common.UserRoleKey, role)
		c.Set(common.UserClaimsKey, claims)

		logger.Debug("User authenticated",
			zap.String("subject", claims.Subject),
			zap.String("role", role),
		)

		c.Next()
	}
}

// rejectionMessage maps verifier errors to client-facing messages.
func rejectionMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "Forbidden: Token has expired."
	case errors.Is(err, auth.ErrNoMatchingKey):
		return "Forbidden: Token signature is invalid."
	case errors.Is(err, auth.ErrMissingSubject):
		return "Forbidden: Token is missing user identifier."
	default:
		return "Forbidden: Invalid token."
	}
}

// GetUserIDFromContext retrieves the authenticated subject from the Gin context.
func GetUserIDFromContext(c *gin.Context) string {
	return common.GetUserIDFromContext(c)
}

// GetUserRoleFromContext retrieves the user role from the Gin context.
func GetUserRoleFromContext(c *gin.Context) string {
	return common.GetUserRoleFromContext(c)
}

// GetUserClaimsFromContext retrieves the verified identity claims from the Gin context.
func GetUserClaimsFromContext(c *gin.Context) *shared.IdentityClaims {
	val, exists := c.Get(common.UserClaimsKey)
	if !exists {
		return nil
	}
	claims, ok := val.(*shared.IdentityClaims)
	if !ok {
		return nil
	}
	return claims
}

// RoleAuthMiddleware creates a middleware to check if the authenticated user
// has one of the required roles.
func RoleAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := GetUserRoleFromContext(c)
		if userRole == "" {
			common.RespondWithError(c, common.ErrForbidden.WithMessage("Forbidden: Role not established."))
			return
		}

		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}

		common.RespondWithError(c, common.ErrForbidden.WithMessage("Forbidden: You do not have permission to perform this action."))
	}
}
