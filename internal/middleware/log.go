package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *loggingResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *loggingResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// LogMiddleware logs every request with its body. Credentials posted to the
// login and register routes are not logged.
func LogMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			var body []byte
			if r.Body != nil {
				body, _ = io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewReader(body))
			}

			lw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lw, r)
			if lw.status == 0 {
				lw.status = http.StatusOK
			}

			logged := string(body)
			if hasCredentials(r.URL.Path) {
				logged = "<redacted>"
			}

			logger.Infof("method=%s uri=%s status=%d duration=%s size=%d body=%s outputheaders=%v",
				r.Method, r.RequestURI, lw.status, time.Since(start), lw.size, logged, lw.Header())
		})
	}
}

func hasCredentials(path string) bool {
	return strings.HasSuffix(path, "/login") || strings.HasSuffix(path, "/register")
}
