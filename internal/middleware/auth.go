package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gtuventures/ventures-backend/internal/common"
	"github.com/gtuventures/ventures-backend/pkg/jwt"
)

// Context keys set by JWTAuth
const (
	ctxUserID   = "userID"
	ctxUserName = "userName"
	ctxRole     = "role"
)

// JWTAuth rejects requests without a valid Bearer token before any handler runs
func JWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "Missing authorization header", nil)
			c.Abort()
			return
		}

		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "Invalid authorization header format", nil)
			c.Abort()
			return
		}

		claims, err := jwtManager.VerifyToken(strings.TrimSpace(tokenString))
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				common.ErrorResponse(c, http.StatusUnauthorized, "Token expired", nil)
			} else {
				common.ErrorResponse(c, http.StatusUnauthorized, "Invalid token", nil)
			}
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.Subject)
		c.Set(ctxUserName, claims.Name)
		c.Set(ctxRole, claims.Role)

		c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// GetUserName extracts the display name from context
func GetUserName(c *gin.Context) string {
	return c.GetString(ctxUserName)
}

// GetRole extracts the token role from context
func GetRole(c *gin.Context) string {
	return c.GetString(ctxRole)
}
