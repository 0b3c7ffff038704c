package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"wordladder/internal/security"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLogging tags each request with an id and logs its outcome
func (h *Handler) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		h.logger.Info("http request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"remote", security.GetClientIP(r))
	})
}

// requireIdentity verifies the bearer token and stores the identity in the context
func (h *Handler) requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: ErrUnauthorized})
			return
		}

		identity, err := h.verifier.Verify(strings.TrimSpace(header[len("bearer "):]))
		if err != nil {
			h.logger.Debug("token rejected", "error", err)
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: ErrUnauthorized})
			return
		}

		next.ServeHTTP(w, r.WithContext(security.WithIdentity(r.Context(), identity)))
	})
}

// rateLimit throttles each learner independently
func (h *Handler) rateLimit(next http.Handler) http.Handler {
	if h.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := security.GetClientIP(r)
		if identity, ok := security.IdentityFromContext(r.Context()); ok {
			key = "learner:" + strconv.FormatInt(identity.LearnerID, 10)
		}
		if !h.limiter.Allow(key) {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: ErrRateLimited})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireCapability rejects callers whose role lacks capability
func (h *Handler) requireCapability(capability security.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := security.IdentityFromContext(r.Context())
			if !ok || !identity.Can(capability) {
				writeJSON(w, http.StatusForbidden, errorResponse{Error: ErrForbidden})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
