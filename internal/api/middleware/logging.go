package middleware

import (
	"net/http"
	"time"

	"dsa_arena/internal/platform/logger"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs one line per request through the application logger.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				kv := []interface{}{
					"method", r.Method,
					"path", r.URL.Path,
					"status", status,
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", chiMiddleware.GetReqID(r.Context()),
				}
				switch {
				case status >= 500:
					log.Error("request", kv...)
				case status >= 400:
					log.Warn("request", kv...)
				default:
					log.Info("request", kv...)
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
