package middleware

import (
	"net/http"
	"time"

	"weatherforecast/logger"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// AccessLog logs every request at DEBUG and server errors at WARN
func AccessLog(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			elapsed := time.Since(start).Round(time.Microsecond)
			reqID := RequestIDFromContext(r.Context())
			if rec.status >= http.StatusInternalServerError {
				log.Warnf("%s %s -> %d (%s) id=%s", r.Method, r.URL.Path, rec.status, elapsed, reqID)
				return
			}
			log.Debugf("%s %s -> %d (%s) id=%s", r.Method, r.URL.Path, rec.status, elapsed, reqID)
		})
	}
}
