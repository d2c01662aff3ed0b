package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/multimongo/component"
)

// Readiness answers 503 while any component is unhealthy. Degraded
// components still accept traffic.
func Readiness(service string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "ready", http.StatusOK
		if checker != nil {
			for _, h := range checker(c.Request.Context()) {
				if h.Status == component.StatusUnhealthy {
					status, code = "not_ready", http.StatusServiceUnavailable
					break
				}
			}
		}
		c.JSON(code, gin.H{
			"status":    status,
			"service":   service,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
