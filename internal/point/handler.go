// File: internal/point/handler.go
package point

import (
	"errors"
	"fmt"

	"nexus_mapping_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for map point handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new map point handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.Named("PointHandler"),
	}
}

// RegisterRoutes sets up the routes for map point operations.
// Submission and reads are public; updates require an admin token; the
// reset endpoints accept the static admin secret as a second trust path.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, adminRoleMW, secretMW gin.HandlerFunc) {
	pointGroup := router.Group("/map-points")
	{
		pointGroup.POST("", h.createMapPoint)
		pointGroup.GET("", h.listMapPoints)
		pointGroup.GET("/:id", h.getMapPointByID)
		pointGroup.PATCH("/:id", authMW, adminRoleMW, h.updateMapPoint)
	}

	router.POST("/seed", authMW, adminRoleMW, h.seed)

	adminGroup := router.Group("/admin", secretMW)
	{
		adminGroup.POST("/reset-db", h.seed)
		adminGroup.POST("/test-cron", h.seed)
	}
}

func (h *Handler) createMapPoint(c *gin.Context) {
	var req CreateMapPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Create map point: invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithMessage("Missing required fields."))
		return
	}

	pt, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, gin.H{"point": pt})
}

func (h *Handler) getMapPointByID(c *gin.Context) {
	id := c.Param("id")
	pt, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, gin.H{"point": pt})
}

func (h *Handler) listMapPoints(c *gin.Context) {
	var query SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Warn("List map points: invalid query parameters", zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest)
		return
	}
	query.Page, query.Size = common.GetPaginationParams(c)

	points, pagination, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if points == nil {
		points = []MapPoint{}
	}
	common.RespondPaginated(c, "points", points, pagination)
}

func (h *Handler) updateMapPoint(c *gin.Context) {
	id := c.Param("id")

	var req UpdateMapPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Update map point: invalid request body", zap.Error(err), zap.String("pointID", id))
		common.RespondWithError(c, common.ErrBadRequest.WithMessage("Invalid request body."))
		return
	}

	pt, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, gin.H{"point": pt})
}

// seed serves the admin-token seed endpoint, the secret-gated reset-db
// endpoint, and the cron smoke-test endpoint; all three run the same
// destructive reseed.
func (h *Handler) seed(c *gin.Context) {
	count, err := h.service.Reseed(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, gin.H{"message": fmt.Sprintf("Database seeded with %d map points.", count)})
}
