package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/residence-portal-api/internal/models"
	"github.com/noah-isme/residence-portal-api/internal/service"
)

// Metrics records every request against its route template and the request kind it targets.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			// raw paths would explode label cardinality
			route = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(service.HTTPObservation{
			Method:   c.Request.Method,
			Route:    route,
			Kind:     kindLabel(c.Param("kind")),
			Status:   c.Writer.Status(),
			Duration: time.Since(start),
		})
	}
}

// kindLabel folds collection aliases onto the canonical kind so both spellings share a series.
func kindLabel(raw string) string {
	if raw == "" {
		return "none"
	}
	if kind, ok := models.ParseKind(raw); ok {
		return string(kind)
	}
	return "unknown"
}
