package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/gtuventures/ventures-backend/internal/common"
	"github.com/gtuventures/ventures-backend/pkg/logger"
)

// Recovery turns a panic into a logged 500 with the standard error body
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		requestID, _ := c.Get("request_id")
		logger.GetLogger().Error().
			Interface("panic", recovered).
			Interface("request_id", requestID).
			Str("path", c.Request.URL.Path).
			Bytes("stack", debug.Stack()).
			Msg("panic recovered")
		common.ErrorResponse(c, http.StatusInternalServerError, "Something went wrong, please try again", nil)
		c.Abort()
	})
}
