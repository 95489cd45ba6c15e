package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mapda-dev/mapda-api/internal/config"
	"github.com/mapda-dev/mapda-api/internal/dto"
	"github.com/mapda-dev/mapda-api/internal/utils"
)

// AuthMiddleware enforces authentication on every route except the configured
// public paths. It is installed globally, so adding a route never silently
// leaves it unprotected.
func AuthMiddleware(jwtManager *utils.JWTManager, authCfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authCfg.IsPublic(c.Request.URL.Path) {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Authorization header is required",
			})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		userUUID, err := jwtManager.VerifyAccessToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("user_uuid", userUUID)
		c.Next()
	}
}
