package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Process request
		c.Next()

		// Health probes would drown the log
		if c.Request.URL.Path == "/health" {
			return
		}

		// Log after request is processed
		duration := time.Since(start)

		entry := logrus.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   duration,
			"client_ip":  c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		})

		if c.Writer.Status() >= 400 {
			entry.Error("Request failed")
		} else {
			entry.Info("Request processed")
		}
	}
}
