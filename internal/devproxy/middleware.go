package devproxy

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/thushan/llamadeck/internal/logger"
	"github.com/thushan/llamadeck/internal/util"
	"github.com/thushan/llamadeck/pkg/format"
)

// HeaderRequestID is echoed back so browser devtools can correlate log lines
const HeaderRequestID = "X-Llamadeck-Request-ID"

// responseWriter captures status and size for the access log
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int64
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += int64(size)
	return size, err
}

func (rw *responseWriter) WriteHeader(s int) {
	rw.status = s
	rw.ResponseWriter.WriteHeader(s)
}

// Flush keeps SSE completions streaming through the wrapper
func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// accessLog logs every request at debug level on the terminal and in full
// to the log file when file output is enabled
func accessLog(log *logger.StyledLogger, routes *RouteTable) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(HeaderRequestID)
			if requestID == "" {
				requestID = util.GenerateRequestID()
			}
			w.Header().Set(HeaderRequestID, requestID)

			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			_, proxied := routes.MatchProxy(r.URL.Path)

			log.Debug("Request completed",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.status,
				"proxied", proxied,
				"size", format.Bytes(wrapped.size),
				"took", format.Duration(duration))

			log.GetUnderlying().LogAttrs(logger.WithDetailed(r.Context()), slog.LevelInfo, "Access log",
				slog.String("timestamp", start.Format(time.RFC3339)),
				slog.String("request_id", requestID),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("query", r.URL.RawQuery),
				slog.Int("status", wrapped.status),
				slog.Bool("proxied", proxied),
				slog.Int64("request_bytes", max(r.ContentLength, 0)),
				slog.Int64("response_bytes", wrapped.size),
				slog.Int64("duration_ms", duration.Milliseconds()),
				slog.String("user_agent", r.UserAgent()),
				slog.String("referer", r.Referer()))
		})
	}
}
