package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mapda-dev/mapda-api/internal/dto"
	"github.com/mapda-dev/mapda-api/internal/service"
	"github.com/mapda-dev/mapda-api/pkg/database"
	"go.uber.org/zap"
)

// AdminHandler handles operator endpoints
type AdminHandler struct {
	authService service.AuthService
	redis       *database.Redis
	logger      *zap.Logger
	adminUUID   string
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(authService service.AuthService, redis *database.Redis, logger *zap.Logger, adminUUID string) *AdminHandler {
	return &AdminHandler{
		authService: authService,
		redis:       redis,
		logger:      logger,
		adminUUID:   adminUUID,
	}
}

// Login authenticates the operator account
// @Summary Admin login
// @Description Authenticate with the operator password
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.AdminLoginRequest true "Admin login request"
// @Success 200 {object} dto.AdminLoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /admin/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	token, err := h.authService.AdminLogin(c.Request.Context(), req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAdminAuth) {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid credentials",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Admin login failed",
		})
		return
	}

	c.JSON(http.StatusOK, dto.AdminLoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
	})
}

// FlushRedis clears the cache database
// @Summary Flush redis
// @Description Clear every cached entry (search cache, rate limit counters)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/flush-redis [delete]
func (h *AdminHandler) FlushRedis(c *gin.Context) {
	userUUID, exists := c.Get("user_uuid")
	if !exists || userUUID.(string) != h.adminUUID {
		c.JSON(http.StatusForbidden, dto.ErrorResponse{
			Error:   "Forbidden",
			Message: "Admin access required",
		})
		return
	}

	if err := h.redis.Flush(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Failed to flush cache",
		})
		return
	}

	h.logger.Info("cache flushed by operator")
	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Cache flushed",
	})
}
