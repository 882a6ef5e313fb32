package order

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"food-delivery/internal/config"
	"food-delivery/internal/logger"

	"github.com/rs/cors"
)

const requestIDHeader = "X-Request-ID"

// withLogging assigns a request id and logs the start and end of every request
func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = logger.GenerateRequestID()
		}
		w.Header().Set(requestIDHeader, requestID)
		r = r.WithContext(logger.WithRequestID(r.Context(), requestID))

		h.logger.Debug("request_started",
			fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
				"user_agent":  r.Header.Get("User-Agent"),
			})

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		h.logger.Debug("request_completed",
			fmt.Sprintf("%s %s - %d", r.Method, r.URL.Path, rw.statusCode),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status_code": rw.statusCode,
				"duration_ms": time.Since(start).Milliseconds(),
			})
	})
}

// corsMethods is what a "*" method policy expands to. rs/cors matches methods literally.
var corsMethods = []string{http.MethodGet, http.MethodHead, http.MethodPost}

// newCORS builds the cross-origin policy from config. Preflight requests are
// answered with 204 and never reach the routes.
func newCORS(cfg config.CORSConfig, log *logger.Logger) *cors.Cors {
	methods := cfg.AllowedMethods
	if len(methods) == 0 || slices.Contains(methods, "*") {
		methods = corsMethods
	}

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: methods,
		AllowedHeaders: cfg.AllowedHeaders,
		ExposedHeaders: []string{requestIDHeader},
	})
	c.Log = corsLogger{log: log}
	return c
}

// corsLogger routes rs/cors decisions to the debug log
type corsLogger struct {
	log *logger.Logger
}

func (l corsLogger) Printf(format string, args ...interface{}) {
	l.log.Debug("cors_decision", strings.TrimSpace(fmt.Sprintf(format, args...)), "", nil)
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
