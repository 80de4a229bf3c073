// File: internal/common/response.go
package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondWithError sends a JSON error response and aborts the request.
func RespondWithError(c *gin.Context, err error) {
	apiErr, ok := IsAPIError(err)
	if !ok {
		if l, exists := c.Get("logger"); exists {
			if logger, ok := l.(*zap.Logger); ok {
				logger.Error("Unhandled internal error being wrapped", zap.Error(err))
			}
		}
		// Never leak storage or upstream error text to clients.
		apiErr = ErrInternalServer
	}

	c.AbortWithStatusJSON(apiErr.StatusCode, apiErr)
}

// RespondSuccess sends a JSON success response of shape {"success": true, ...payload}.
func RespondSuccess(c *gin.Context, statusCode int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(statusCode, body)
}

// RespondOK sends a 200 OK success response.
func RespondOK(c *gin.Context, payload gin.H) {
	RespondSuccess(c, http.StatusOK, payload)
}

// RespondCreated sends a 201 Created success response.
func RespondCreated(c *gin.Context, payload gin.H) {
	RespondSuccess(c, http.StatusCreated, payload)
}

// RespondPaginated sends a success response carrying a list plus pagination metadata.
func RespondPaginated(c *gin.Context, key string, data interface{}, pagination *Pagination) {
	RespondSuccess(c, http.StatusOK, gin.H{
		key:          data,
		"pagination": pagination,
	})
}
