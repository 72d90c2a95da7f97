package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/APISource-Intelligence/internal/infrastructure/monitoring/logging"
	appprom "github.com/turtacn/APISource-Intelligence/internal/infrastructure/monitoring/prometheus"
)

// requestLogger logs every request and feeds the HTTP metrics when a
// collector is configured.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()

		s.logger.Info("request",
			logging.String("method", c.Request.Method),
			logging.String("path", path),
			logging.Int("status", status),
			logging.Int64("duration_ms", duration.Milliseconds()),
		)
		if s.metrics != nil {
			appprom.RecordHTTPRequest(s.metrics, c.Request.Method, path, status, duration)
		}
	}
}

//Personal.AI order the ending
