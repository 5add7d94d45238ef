package middleware

import (
	"time"

	"github.com/dimitrije/taskboard-api/internal/metrics"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

// Observe records request counts and latency and writes one debug line per
// request.
func Observe(m *metrics.Metrics, logger *zap.Logger) drift.HandlerFunc {
	return func(c *drift.Context) {
		start := time.Now()

		c.Next()

		elapsed := time.Since(start)
		method := c.Request.Method
		m.RequestsTotal.WithLabelValues(method).Inc()
		m.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())

		logger.Debug("request",
			zap.String("method", method),
			zap.String("path", c.Request.URL.Path),
			zap.Duration("elapsed", elapsed),
		)
	}
}
