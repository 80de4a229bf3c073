// File: internal/session/handler.go
package session

import (
	"errors"
	"net/http"

	"nexus_mapping_backend/internal/common"
	"nexus_mapping_backend/internal/config"
	"nexus_mapping_backend/internal/platform/crypto"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	stateCookieName   = "oauth_state"
	stateCookieMaxAge = 600
)

// Handler serves the browser-facing login flow for the admin front end.
type Handler struct {
	service *Service
	cfg     *config.Config
	logger  *zap.Logger
}

// NewHandler creates a new session handler.
func NewHandler(service *Service, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		cfg:     cfg,
		logger:  logger.Named("SessionHandler"),
	}
}

// RegisterRoutes sets up the session issuing routes. These sit outside the
// rate-limited /api surface.
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	authGroup := router.Group("/auth")
	{
		authGroup.GET("/google/login", h.login)
		authGroup.GET("/google/callback", h.callback)
		authGroup.GET("/me", h.me)
		authGroup.POST("/logout", h.logout)
	}
}

func (h *Handler) login(c *gin.Context) {
	state, err := crypto.GenerateSecureRandomString(32)
	if err != nil {
		h.logger.Error("Failed to generate OAuth state", zap.Error(err))
		common.RespondWithError(c, common.ErrInternalServer)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookieName, state, stateCookieMaxAge, "/", "", false, true)
	c.Redirect(http.StatusFound, h.service.AuthCodeURL(state))
}

func (h *Handler) callback(c *gin.Context) {
	state := c.Query("state")
	storedState, err := c.Cookie(stateCookieName)
	if err != nil || state == "" || state != storedState {
		h.logger.Warn("OAuth state mismatch", zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest.WithMessage("Invalid OAuth state."))
		return
	}
	// State is single use.
	c.SetCookie(stateCookieName, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		common.RespondWithError(c, common.ErrBadRequest.WithMessage("Missing authorization code."))
		return
	}

	signed, claims, err := h.service.CompleteLogin(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("Login completion failed", zap.Error(err))
		common.RespondWithError(c, common.ErrServerConfig.WithMessage("Login failed."))
		return
	}

	maxAge := int(h.cfg.SessionTTL.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.service.CookieName(), signed, maxAge, "/", "", false, true)

	h.logger.Info("Session issued", zap.String("uid", claims.UID), zap.String("role", claims.Role))
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) me(c *gin.Context) {
	raw, err := c.Cookie(h.service.CookieName())
	if err != nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithMessage("Unauthorized: No active session."))
		return
	}

	claims, err := h.service.ValidateToken(raw)
	if err != nil {
		if errors.Is(err, ErrExpiredSessionToken) {
			common.RespondWithError(c, common.ErrUnauthorized.WithMessage("Unauthorized: Session has expired."))
			return
		}
		common.RespondWithError(c, common.ErrUnauthorized.WithMessage("Unauthorized: Invalid session."))
		return
	}

	common.RespondOK(c, gin.H{"user": gin.H{
		"uid":   claims.UID,
		"email": claims.Email,
		"name":  claims.Name,
		"role":  claims.Role,
	}})
}

func (h *Handler) logout(c *gin.Context) {
	c.SetCookie(h.service.CookieName(), "", -1, "/", "", false, true)
	common.RespondOK(c, gin.H{"message": "Logged out."})
}
