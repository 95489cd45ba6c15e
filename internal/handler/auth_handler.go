package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mapda-dev/mapda-api/internal/dto"
	"github.com/mapda-dev/mapda-api/internal/provider"
	"github.com/mapda-dev/mapda-api/internal/repository"
	"github.com/mapda-dev/mapda-api/internal/service"
	"github.com/mapda-dev/mapda-api/internal/utils"
)

// AuthHandler handles provider logins, token refresh and unregister
type AuthHandler struct {
	authService service.AuthService
	jwtManager  *utils.JWTManager
	kakao       *provider.Kakao
	apple       *provider.Apple
	google      *provider.Google
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, jwtManager *utils.JWTManager, kakao *provider.Kakao, apple *provider.Apple, google *provider.Google) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtManager:  jwtManager,
		kakao:       kakao,
		apple:       apple,
		google:      google,
	}
}

// LoginKakao handles Kakao login
// @Summary Login with Kakao
// @Description Log in or provision a user from a Kakao profile
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.KakaoLoginRequest true "Kakao login request"
// @Success 200 {object} dto.LoginResponse
// @Success 201 {object} dto.LoginResponse
// @Success 202 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /login/kakao [post]
func (h *AuthHandler) LoginKakao(c *gin.Context) {
	var req dto.KakaoLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	identity, err := h.kakao.Normalize(provider.KakaoPayload{
		ID:                    req.ID,
		Nickname:              optional(req.Nickname),
		Email:                 optional(req.Email),
		ProfileImage:          optional(req.ProfileImage),
		IsProfileImageDefault: req.IsProfileImageDefault,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "Invalid Kakao profile",
		})
		return
	}

	h.completeLogin(c, identity)
}

// LoginApple handles Sign in with Apple
// @Summary Login with Apple
// @Description Exchange an Apple authorization code and log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.AppleLoginRequest true "Apple login request"
// @Success 200 {object} dto.LoginResponse
// @Success 201 {object} dto.LoginResponse
// @Success 202 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /login/apple [post]
func (h *AuthHandler) LoginApple(c *gin.Context) {
	var req dto.AppleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	identity, err := h.apple.Verify(c.Request.Context(), provider.AppleCredential{
		AuthorizationCode: req.AuthorizationCode,
		UserEmail:         req.UserEmail,
		UserName:          req.UserName,
	})
	if err != nil {
		h.providerError(c, err)
		return
	}

	h.completeLogin(c, identity)
}

// LoginGoogle handles Google login
// @Summary Login with Google
// @Description Verify a Google identity token and log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.GoogleLoginRequest true "Google login request"
// @Success 200 {object} dto.LoginResponse
// @Success 201 {object} dto.LoginResponse
// @Success 202 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /login/google [post]
func (h *AuthHandler) LoginGoogle(c *gin.Context) {
	var req dto.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	identity, err := h.google.Verify(c.Request.Context(), provider.GoogleCredential{
		IDToken:     req.IDToken,
		AccessToken: req.AccessToken,
	})
	if err != nil {
		h.providerError(c, err)
		return
	}

	h.completeLogin(c, identity)
}

// completeLogin reconciles the verified identity and maps the outcome to the
// response status: 201 for a freshly provisioned user, 202 when registration
// is still pending, 200 for a regular login.
func (h *AuthHandler) completeLogin(c *gin.Context, identity *provider.Identity) {
	result, err := h.authService.Reconcile(c.Request.Context(), identity)
	if err != nil {
		if errors.Is(err, service.ErrInvalidUserState) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Bad request",
				Message: "Account is not allowed to log in",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Login failed",
		})
		return
	}

	status := http.StatusOK
	switch result.Classification {
	case service.ClassificationCreated:
		status = http.StatusCreated
	case service.ClassificationNeedRegister:
		status = http.StatusAccepted
	}

	c.JSON(status, dto.LoginResponse{
		Message:      result.Message,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

// Refresh handles access token refresh
// @Summary Refresh access token
// @Description Exchange a refresh token for a new access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshRequest true "Refresh request"
// @Success 200 {object} dto.RefreshResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	accessToken, err := h.authService.RefreshAccessToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid or expired refresh token",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Token refresh failed",
		})
		return
	}

	c.JSON(http.StatusOK, dto.RefreshResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   h.jwtManager.AccessTokenExpirySeconds(),
	})
}

// Unregister handles account deletion. A failed provider revoke answers
// with the provider's own status code.
// @Summary Unregister account
// @Description Revoke the provider link and delete the account
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/unregister [delete]
func (h *AuthHandler) Unregister(c *gin.Context) {
	userUUID, exists := c.Get("user_uuid")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "User not found in context",
		})
		return
	}

	err := h.authService.Unregister(c.Request.Context(), userUUID.(string))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "Not found",
				Message: "User not found",
			})
			return
		}
		// The provider's own status code is passed through so the client
		// sees the same failure the revoke endpoint reported.
		var statusErr *provider.StatusError
		if errors.As(err, &statusErr) {
			c.JSON(statusErr.StatusCode, dto.ErrorResponse{
				Error:   "Provider error",
				Message: statusErr.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Unregister failed",
		})
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Account deleted successfully",
	})
}

// providerError maps provider verification failures to HTTP statuses. A
// rejected credential is the client's fault, so it gets 400; a non-200 from
// a provider endpoint (e.g. Apple's token exchange) keeps the provider's
// status.
func (h *AuthHandler) providerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, provider.ErrAuthFailed):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "Provider authentication failed",
		})
	case errors.Is(err, provider.ErrNotConfigured):
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Login provider is not configured",
		})
	default:
		var statusErr *provider.StatusError
		if errors.As(err, &statusErr) {
			c.JSON(statusErr.StatusCode, dto.ErrorResponse{
				Error:   "Provider error",
				Message: statusErr.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Login failed",
		})
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
