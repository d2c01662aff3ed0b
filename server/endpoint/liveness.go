package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Liveness only confirms the process serves HTTP.
func Liveness(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "alive",
			"service":   service,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
