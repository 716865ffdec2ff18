package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type contextKey string

const ownerIDKey contextKey = "owner_id"

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// observe logs every request and records HTTP metrics against the chi
// route pattern rather than the raw path, keeping label cardinality low.
func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := newResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		duration := time.Since(start)

		h.metrics.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		h.metrics.requestDuration.WithLabelValues(r.Method, route).Observe(duration.Seconds())

		h.logger.Info("Request handled",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", wrapped.statusCode),
			zap.Duration("duration", duration))
	})
}

// requireAuth resolves the bearer token to an owner id and stashes it in
// the request context. Everything downstream operates on the resolved id
// only.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSONError(w, http.StatusUnauthorized, "missing bearer token", "")
			return
		}

		ownerID, ok := h.auth.Resolve(token)
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "invalid or expired token", "")
			return
		}

		ctx := context.WithValue(r.Context(), ownerIDKey, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ownerFromContext(ctx context.Context) uint {
	id, _ := ctx.Value(ownerIDKey).(uint)
	return id
}
