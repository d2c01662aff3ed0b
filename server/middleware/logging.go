package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/multimongo/logger"
)

// probePaths are not logged.
var probePaths = []string{"/health", "/alive", "/ready"}

// RequestLogger logs method, path, status and duration of every request
// except probes. 5xx log at error, 4xx at warn, the rest at debug.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isProbe(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			fields := logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			if id := r.Header.Get(RequestIDHeader); id != "" {
				fields["request_id"] = id
			}

			switch {
			case sw.status >= 500:
				log.Error("request completed", fields)
			case sw.status >= 400:
				log.Warn("request completed", fields)
			default:
				log.Debug("request completed", fields)
			}
		})
	}
}

func isProbe(path string) bool {
	for _, p := range probePaths {
		if path == p || (strings.HasPrefix(path, "/api/") && strings.HasSuffix(path, p)) {
			return true
		}
	}
	return false
}
