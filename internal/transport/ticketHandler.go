package transport

import (
	"net/http"
	"strconv"

	"queueline-app/internal/service"

	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	ticketService service.TicketService
}

func NewTicketHandler(ticketService service.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

func (h *TicketHandler) Join(c *gin.Context) {
	queueID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ticket, err := h.ticketService.Join(c.Request.Context(), queueID, userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ticket)
}

func (h *TicketHandler) Cancel(c *gin.Context) {
	ticketID := c.Param("ticket_id")

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.ticketService.Cancel(c.Request.Context(), ticketID, userID); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "ticket cancelled"})
}

func (h *TicketHandler) ServeNext(c *gin.Context) {
	queueID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ticket, err := h.ticketService.ServeNext(c.Request.Context(), queueID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) Get(c *gin.Context) {
	ticketID := c.Param("ticket_id")

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ticket, err := h.ticketService.Get(c.Request.Context(), ticketID, userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) GetActive(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ticket, err := h.ticketService.GetActiveForUser(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) GetHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	tickets, err := h.ticketService.GetHistoryForUser(c.Request.Context(), userID, limit)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) ListQueueTickets(c *gin.Context) {
	queueID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tickets, err := h.ticketService.ListQueueTickets(c.Request.Context(), queueID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) UpdateAlerts(c *gin.Context) {
	ticketID := c.Param("ticket_id")

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.UpdateAlertPrefsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: err.Error()})
		return
	}

	if err := h.ticketService.UpdateAlertPrefs(c.Request.Context(), ticketID, userID, &req); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "alert preferences updated"})
}
