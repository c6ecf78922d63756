package transport

import (
	"net/http"
	"strconv"

	repository "queueline-app/internal/database/postgres"

	"github.com/gin-gonic/gin"
)

// NotificationHandler serves the browser notification feed. Clients poll it
// to pick up alerts that were delivered over the browser channel.
type NotificationHandler struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationHandler(notificationRepo repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepo: notificationRepo}
}

func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	notifications, err := h.notificationRepo.GetByUser(c.Request.Context(), userID, limit)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, notifications)
}
