package transport

import (
	"net/http"
	"strconv"

	"queueline-app/internal/service"

	"github.com/gin-gonic/gin"
)

type QueueHandler struct {
	queueService service.QueueService
}

func NewQueueHandler(queueService service.QueueService) *QueueHandler {
	return &QueueHandler{queueService: queueService}
}

func (h *QueueHandler) CreateQueue(c *gin.Context) {
	var req service.CreateQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: err.Error()})
		return
	}

	queue, err := h.queueService.CreateQueue(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, queue)
}

func (h *QueueHandler) GetQueue(c *gin.Context) {
	queueID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	queue, err := h.queueService.GetQueue(c.Request.Context(), queueID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, queue)
}

func (h *QueueHandler) GetBusinessQueues(c *gin.Context) {
	businessID, ok := parseIDParam(c, "business_id")
	if !ok {
		return
	}

	queues, err := h.queueService.GetBusinessQueues(c.Request.Context(), businessID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, queues)
}

func (h *QueueHandler) UpdateQueue(c *gin.Context) {
	queueID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.UpdateQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: err.Error()})
		return
	}

	queue, err := h.queueService.UpdateQueue(c.Request.Context(), queueID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, queue)
}

func (h *QueueHandler) DeactivateQueue(c *gin.Context) {
	queueID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.queueService.DeactivateQueue(c.Request.Context(), queueID); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "queue deactivated"})
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "invalid " + name})
		return 0, false
	}
	return id, true
}
