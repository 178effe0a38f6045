package api

import (
	"net/http"
	"time"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID reuses a well-formed incoming X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if uuid.Validate(id) != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request failed", args...)
		case status >= http.StatusBadRequest:
			log.Warn("request rejected", args...)
		default:
			log.Info("request", args...)
		}
	}
}

// Recovery turns a panic into a 500 envelope.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered", "request_id", c.GetString(requestIDKey), "path", c.Request.URL.Path, "panic", recovered)
		respondError(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	})
}
