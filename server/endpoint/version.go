package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/multimongo/version"
)

var startTime = time.Now()

// Version reports build information and uptime.
func Version(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		info := version.Get()
		c.JSON(http.StatusOK, gin.H{
			"service":    service,
			"version":    info.Version,
			"git_commit": info.GitCommit,
			"git_branch": info.GitBranch,
			"go_version": info.GoVersion,
			"driver":     info.Driver,
			"release":    info.IsRelease(),
			"uptime":     time.Since(startTime).Round(time.Second).String(),
		})
	}
}
