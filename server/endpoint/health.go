package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/multimongo/component"
	"github.com/kbukum/multimongo/observability"
)

// HealthChecker returns the health of every registered component.
type HealthChecker func(ctx context.Context) []component.Health

// Health reports the aggregated service health. It answers 503 when any
// component is unhealthy.
func Health(service, version string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := observability.NewServiceHealth(service, version)
		if checker != nil {
			for _, h := range checker(c.Request.Context()) {
				sh.AddComponent(h)
			}
		}

		status := http.StatusOK
		if !sh.IsHealthy() {
			status = http.StatusServiceUnavailable
		}
		c.Header("Cache-Control", "no-store")
		c.JSON(status, gin.H{
			"status":     sh.Status,
			"service":    sh.Service,
			"version":    sh.Version,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"components": sh.Components,
		})
	}
}
