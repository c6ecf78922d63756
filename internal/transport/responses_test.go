package transport

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"queueline-app/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHandleErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"queue not found", entity.ErrQueueNotFound, http.StatusNotFound},
		{"ticket not found", entity.ErrTicketNotFound, http.StatusNotFound},
		{"unauthorized", entity.ErrUnauthorized, http.StatusForbidden},
		{"already queued", entity.ErrAlreadyQueued, http.StatusConflict},
		{"cannot cancel when next", entity.ErrCannotCancelWhenNext, http.StatusConflict},
		{"queue inactive", entity.ErrQueueInactive, http.StatusConflict},
		{"queue empty", entity.ErrQueueEmpty, http.StatusConflict},
		{
			"wrapped invalid input",
			fmt.Errorf("%w: threshold must be positive", entity.ErrInvalidInput),
			http.StatusBadRequest,
		},
		{
			"wrapped storage failure",
			fmt.Errorf("%w: failed to query tickets: connection refused", entity.ErrStorage),
			http.StatusInternalServerError,
		},
		{"unknown error", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			handleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestCurrentUserIDHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		header string
		wantID int64
		wantOK bool
	}{
		{"valid id", "42", 42, true},
		{"missing header", "", 0, false},
		{"not a number", "abc", 0, false},
		{"non-positive", "0", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				c.Request.Header.Set(userIDHeader, tt.header)
			}

			userID, ok := currentUserID(c)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, userID)
			if !tt.wantOK {
				assert.Equal(t, http.StatusUnauthorized, w.Code)
			}
		})
	}
}
