package transport

import (
	"net/http"
	"time"

	"queueline-app/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

func InitRoutes(queueHandler *QueueHandler, ticketHandler *TicketHandler, notificationHandler *NotificationHandler) *gin.Engine {

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(30))

	// API routes
	api := router.Group("/api/v1")
	{
		// Queue routes
		queues := api.Group("/queues")
		{
			queues.POST("", queueHandler.CreateQueue)
			queues.GET("/:id", queueHandler.GetQueue)
			queues.GET("/business/:business_id", queueHandler.GetBusinessQueues)
			queues.PUT("/:id", queueHandler.UpdateQueue)
			queues.DELETE("/:id", queueHandler.DeactivateQueue)

			queues.POST("/:id/join", ticketHandler.Join)
			queues.POST("/:id/serve-next", ticketHandler.ServeNext)
			queues.GET("/:id/tickets", ticketHandler.ListQueueTickets)
		}

		// Ticket routes
		tickets := api.Group("/tickets")
		{
			tickets.GET("/my-active", ticketHandler.GetActive)
			tickets.GET("/my-history", ticketHandler.GetHistory)
			tickets.GET("/:ticket_id", ticketHandler.Get)
			tickets.POST("/:ticket_id/cancel", ticketHandler.Cancel)
			tickets.PUT("/:ticket_id/alerts", ticketHandler.UpdateAlerts)
		}

		// Notification routes
		api.GET("/notifications", notificationHandler.GetNotifications)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	return router
}
