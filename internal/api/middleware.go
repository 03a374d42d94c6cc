package api

import (
	"log/slog"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/go-chi/chi/v5/middleware"
)

// accessLog logs one line per request with the status and size captured by
// httpsnoop. Server errors are logged at error level, client errors at warn.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics := httpsnoop.CaptureMetrics(next, w, r)

		level := slog.LevelInfo
		switch {
		case metrics.Code >= http.StatusInternalServerError:
			level = slog.LevelError
		case metrics.Code >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		s.logger.LogAttrs(r.Context(), level, "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", metrics.Code),
			slog.Int64("bytes", metrics.Written),
			slog.Duration("duration", metrics.Duration),
			slog.String("remote_ip", getClientIP(r)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// noStore marks every response as uncacheable.
func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", CacheNoStore)
		next.ServeHTTP(w, r)
	})
}
