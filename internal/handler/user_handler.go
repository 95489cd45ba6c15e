package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mapda-dev/mapda-api/internal/domain"
	"github.com/mapda-dev/mapda-api/internal/dto"
	"github.com/mapda-dev/mapda-api/internal/repository"
	"github.com/mapda-dev/mapda-api/internal/service"
)

// UserHandler handles profile endpoints
type UserHandler struct {
	authService service.AuthService
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService service.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// RegisterComplete finishes onboarding
// @Summary Complete registration
// @Description Set nickname and campus, activating the account
// @Tags user
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.RegisterCompleteRequest true "Registration completion request"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/userinfo/register_complete [post]
func (h *UserHandler) RegisterComplete(c *gin.Context) {
	userUUID, exists := c.Get("user_uuid")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "User not found in context",
		})
		return
	}

	var req dto.RegisterCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	user, err := h.authService.CompleteRegistration(c.Request.Context(), userUUID.(string), req.Nickname, req.University)
	if err != nil {
		h.userError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateUserInfo applies a partial profile update
// @Summary Update user info
// @Description Update nickname, campus or profile number
// @Tags user
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateUserInfoRequest true "Profile update request"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/userinfo/update_userinfo [patch]
func (h *UserHandler) UpdateUserInfo(c *gin.Context) {
	userUUID, exists := c.Get("user_uuid")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "User not found in context",
		})
		return
	}

	var req dto.UpdateUserInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	user, err := h.authService.UpdateUserInfo(c.Request.Context(), userUUID.(string), service.UserInfoPatch{
		Nickname:      req.Nickname,
		University:    req.University,
		ProfileNumber: req.ProfileNumber,
	})
	if err != nil {
		h.userError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// Inquire returns the current user's profile
// @Summary Get current user profile
// @Description Get information about the current authenticated user
// @Tags user
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/userinfo/inquire [get]
func (h *UserHandler) Inquire(c *gin.Context) {
	userUUID, exists := c.Get("user_uuid")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "User not found in context",
		})
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userUUID.(string))
	if err != nil {
		h.userError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// CheckNickname reports nickname availability
// @Summary Check nickname availability
// @Description Check whether a nickname is free among non-deleted accounts
// @Tags user
// @Security BearerAuth
// @Produce json
// @Param name query string true "Nickname to check"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/userinfo/check_nickname [get]
func (h *UserHandler) CheckNickname(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: "name query parameter is required",
		})
		return
	}

	if err := h.authService.CheckNickname(c.Request.Context(), name); err != nil {
		if errors.Is(err, service.ErrNicknameTaken) {
			c.JSON(http.StatusConflict, dto.ErrorResponse{
				Error:   "Conflict",
				Message: "Nickname is already in use",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Profile operation failed",
		})
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Nickname is available",
	})
}

func (h *UserHandler) userError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "Not found",
			Message: "User not found",
		})
	case errors.Is(err, service.ErrInvalidUniversity):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "Unknown university code",
		})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Profile operation failed",
		})
	}
}

func toUserResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		UUID:          user.UUID,
		Role:          user.Role,
		Status:        string(user.Status),
		Email:         user.Email,
		Nickname:      user.Nickname,
		University:    user.University,
		ProfileNumber: user.ProfileNumber,
		ProviderType:  string(user.ProviderType),
		CreatedAt:     user.CreatedAt.Format(time.RFC3339),
	}
}
