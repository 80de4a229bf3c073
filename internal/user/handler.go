// File: internal/user/handler.go
package user

import (
	"net/http"

	"nexus_mapping_backend/internal/common"
	"nexus_mapping_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for user handlers.
type Handler struct {
	service *ServiceImplementation
	logger  *zap.Logger
}

// NewHandler creates a new user handler.
func NewHandler(service *ServiceImplementation, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.Named("UserHandler"),
	}
}

// RegisterRoutes sets up the routes for user operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	userGroup := router.Group("/users")
	{
		userGroup.POST("/sync", authMW, h.sync)
	}
}

// sync resolves the caller's verified identity to a directory row,
// creating it on first login, and reports the assigned role.
func (h *Handler) sync(c *gin.Context) {
	claims := middleware.GetUserClaimsFromContext(c)
	if claims == nil {
		h.logger.Error("Identity claims missing from context on /users/sync")
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	usr, wasCreated, err := h.service.ResolveOrCreate(c.Request.Context(), claims)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	status := http.StatusOK
	if wasCreated {
		status = http.StatusCreated
	}
	common.RespondSuccess(c, status, gin.H{"user": ToUserResponse(usr)})
}
