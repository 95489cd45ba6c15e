package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mapda-dev/mapda-api/internal/dto"
	"github.com/mapda-dev/mapda-api/internal/service"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// SearchHandler handles place-name autocomplete
type SearchHandler struct {
	authService   service.AuthService
	searchService *service.SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(authService service.AuthService, searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{authService: authService, searchService: searchService}
}

// SearchPlaces searches place names on the caller's campus
// @Summary Search places
// @Description Autocomplete place names on the caller's campus
// @Tags search
// @Security BearerAuth
// @Produce json
// @Param keyword query string true "Search keyword"
// @Param limit query int false "Maximum results"
// @Success 200 {object} dto.PlaceSearchResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/search/place [get]
func (h *SearchHandler) SearchPlaces(c *gin.Context) {
	userUUID, exists := c.Get("user_uuid")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "User not found in context",
		})
		return
	}

	keyword := strings.TrimSpace(c.Query("keyword"))
	if keyword == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "keyword is required",
		})
		return
	}

	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Bad request",
				Message: "limit must be a positive integer",
			})
			return
		}
		if parsed > maxSearchLimit {
			parsed = maxSearchLimit
		}
		limit = parsed
	}

	user, err := h.authService.GetUser(c.Request.Context(), userUUID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Failed to resolve user",
		})
		return
	}
	if user.University == nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "User has no campus set",
		})
		return
	}

	results, err := h.searchService.SearchPlaces(c.Request.Context(), *user.University, keyword, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Search failed",
		})
		return
	}

	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.PlaceName)
	}

	c.JSON(http.StatusOK, dto.PlaceSearchResponse{
		Keyword: keyword,
		Results: names,
	})
}
