package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/question-import-service/internal/utils"
	"github.com/gin-gonic/gin"
)

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := c.Param(param)
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

// RequireUserID returns the caller's user id or writes a 401.
func RequireUserID(c *gin.Context) (string, bool) {
	if userID, exists := c.Get(utils.ContextKeyUserID); exists {
		if id, ok := userID.(string); ok && id != "" {
			return id, true
		}
	}
	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Message: "User not authenticated",
	})
	return "", false
}

// ParseIntQuery reads an optional non-negative integer query parameter.
func ParseIntQuery(c *gin.Context, name string, fallback int) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name,
			Details: "must be a non-negative integer",
		})
		return 0, false
	}
	return value, true
}
