package transport

import (
	"errors"
	"net/http"
	"strconv"

	"queueline-app/internal/entity"

	"github.com/gin-gonic/gin"
)

// SuccessResponse represents a successful API response
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

const userIDHeader = "X-User-ID"

// currentUserID extracts the caller identity from the X-User-ID header.
// Authentication happens upstream; the header is trusted here.
func currentUserID(c *gin.Context) (int64, bool) {
	raw := c.GetHeader(userIDHeader)
	if raw == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Success: false,
			Error:   "missing " + userIDHeader + " header",
		})
		return 0, false
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Success: false,
			Error:   "invalid " + userIDHeader + " header",
		})
		return 0, false
	}

	return userID, true
}

// handleError maps service errors to HTTP statuses
func handleError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, entity.ErrQueueNotFound),
		errors.Is(err, entity.ErrTicketNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, entity.ErrAlreadyQueued),
		errors.Is(err, entity.ErrCannotCancelWhenNext),
		errors.Is(err, entity.ErrQueueInactive),
		errors.Is(err, entity.ErrQueueEmpty):
		status = http.StatusConflict
	case errors.Is(err, entity.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrStorage):
		status = http.StatusInternalServerError
	}

	c.JSON(status, ErrorResponse{Success: false, Error: err.Error()})
}
