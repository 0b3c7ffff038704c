package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wordladder/internal/security"
	"wordladder/internal/service"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Dependencies are the collaborators the HTTP API is built from
type Dependencies struct {
	Sessions          *service.SessionService
	Analyzer          *service.MissedItemAnalyzer
	Graph             *service.WordGraphService
	Verifier          *security.TokenVerifier
	Limiter           *security.RateLimiter
	Store             Pinger
	Logger            *slog.Logger
	DefaultItemCount  int
	DefaultWindowDays int
}

// Handler serves the JSON API
type Handler struct {
	sessions          *service.SessionService
	analyzer          *service.MissedItemAnalyzer
	graph             *service.WordGraphService
	verifier          *security.TokenVerifier
	limiter           *security.RateLimiter
	store             Pinger
	logger            *slog.Logger
	defaultItemCount  int
	defaultWindowDays int
}

// NewRouter builds the HTTP routes
func NewRouter(deps Dependencies) http.Handler {
	h := &Handler{
		sessions:          deps.Sessions,
		analyzer:          deps.Analyzer,
		graph:             deps.Graph,
		verifier:          deps.Verifier,
		limiter:           deps.Limiter,
		store:             deps.Store,
		logger:            deps.Logger,
		defaultItemCount:  deps.DefaultItemCount,
		defaultWindowDays: deps.DefaultWindowDays,
	}

	r := chi.NewRouter()
	r.Use(h.requestLogging)

	r.Get("/healthz", h.handleHealth)

	r.Route("/api", func(api chi.Router) {
		api.Use(h.requireIdentity)
		api.Use(h.rateLimit)

		api.Post("/sessions/daily", h.handleCreateDailySession)
		api.Post("/sessions/review", h.handleCreateReviewSession)
		api.Post("/sessions/screening", h.handleCreateScreeningSession)
		api.Get("/sessions", h.handleHistory)
		api.Get("/sessions/{id}", h.handleGetSession)
		api.Post("/sessions/{id}/submit", h.handleSubmit)
		api.Get("/sessions/{id}/summary", h.handleSessionSummary)

		api.Get("/reports/missed", h.handleMissedReport)
		api.Get("/reports/recent-missed", h.handleRecentMissed)
		api.Get("/reports/sessions", h.handleCentreSessions)

		api.Get("/words", h.handleListWords)
		api.Get("/words/{id}/components", h.handleListComponents)
		api.With(h.requireCapability(security.CapLexiconEdit)).Post("/words/{id}/components", h.handleInsertComponent)

		api.Get("/age-bands", h.handleListAgeBands)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.PingContext(r.Context()); err != nil {
			respondWithError(w, h.logger, http.StatusServiceUnavailable, "database unavailable", "health check failed", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
