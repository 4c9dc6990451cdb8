package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// NewSlogLogger returns a middleware that logs each request as a structured
// JSON line via the provided slog.Logger. It captures method, path, HTTP
// status, duration, the request ID set by chi's RequestID middleware and,
// for authenticated routes, the caller's user ID.
//
// Wire it after chimiddleware.RequestID so the request ID is available.
func NewSlogLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// WrapResponseWriter intercepts WriteHeader so we can read the
			// status code after the downstream handler has run.
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			slot := &callerSlot{}

			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), callerSlotKey{}, slot)))

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", chimiddleware.GetReqID(r.Context()),
			}
			if slot.id != uuid.Nil {
				attrs = append(attrs, "user_id", slot.id.String())
			}
			log.InfoContext(r.Context(), "request", attrs...)
		})
	}
}

// callerSlot is placed in the request context by the logger so the
// authenticator, which runs further down the chain, can report the caller back.
type callerSlot struct {
	id uuid.UUID
}

type callerSlotKey struct{}

func recordCaller(ctx context.Context, id uuid.UUID) {
	if slot, ok := ctx.Value(callerSlotKey{}).(*callerSlot); ok {
		slot.id = id
	}
}
