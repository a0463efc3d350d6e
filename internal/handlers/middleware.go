package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// WithRecover wraps an http.Handler and recovers from panics,
// returning HTTP 500 instead of crashing the server.
func WithRecover(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic recovered", zap.Any("panic", rec),
					zap.String("method", r.Method), zap.String("path", r.URL.Path))
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// Guard runs before a handler and may answer the request itself.
type Guard func(http.HandlerFunc) http.HandlerFunc

// chain runs guards in the order given, then next.
func chain(next http.HandlerFunc, guards ...Guard) http.HandlerFunc {
	for i := len(guards) - 1; i >= 0; i-- {
		next = guards[i](next)
	}
	return next
}

type ctxKey struct{}

func withUser(r *http.Request, uid int64) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey{}, uid))
}

func currentUser(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value(ctxKey{}).(int64)
	return uid, ok
}

// RequireAuth rejects requests without a session with 401.
func (h *Handler) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := h.sessions.CurrentUserID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, withUser(r, uid))
	}
}

// RequirePermission rejects requests with 403 unless the current user holds
// codename. Anonymous requests are rejected the same way.
func (h *Handler) RequirePermission(codename string) Guard {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			uid, ok := currentUser(r)
			if !ok {
				if uid, ok = h.sessions.CurrentUserID(r); ok {
					r = withUser(r, uid)
				}
			}
			if !ok {
				writeError(w, http.StatusForbidden, "Forbidden")
				return
			}
			if err := h.identity.Authorize(r.Context(), uid, codename); err != nil {
				h.fail(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		}
	}
}
