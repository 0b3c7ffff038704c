package handlers

import (
	"net/http"
	"strconv"

	"wordladder/internal/repository"
)

// handleMissedReport reports every missed word in the window. Without
// centre_id it covers the caller's own sessions.
func (h *Handler) handleMissedReport(w http.ResponseWriter, r *http.Request) {
	identity := identityOf(r)

	days, err := queryInt(r, "days", h.defaultWindowDays)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidQuery, "", nil)
		return
	}

	scope := repository.LearnerScope(identity.LearnerID)
	if raw := r.URL.Query().Get("centre_id"); raw != "" {
		centreID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || centreID <= 0 {
			respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidQuery, "", nil)
			return
		}
		if !identity.CanReportOnCentre(centreID) {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: ErrForbidden})
			return
		}
		scope = repository.CentreScope(centreID)
	}

	missed, err := h.analyzer.AggregateMissed(r.Context(), scope, days)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scope":  scope.String(),
		"days":   days,
		"missed": newMissedWordViews(missed),
	})
}

func (h *Handler) handleRecentMissed(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", h.defaultWindowDays)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidQuery, "", nil)
		return
	}
	limit, err := queryInt(r, "limit", defaultRecentMissedLimit)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidQuery, "", nil)
		return
	}

	missed, err := h.analyzer.RecentMissed(r.Context(), identityOf(r).LearnerID, days, limit)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"days":   days,
		"missed": newMissedWordViews(missed),
	})
}

// handleCentreSessions lists a centre's sessions in the window with their scores
func (h *Handler) handleCentreSessions(w http.ResponseWriter, r *http.Request) {
	identity := identityOf(r)

	centreID, err := strconv.ParseInt(r.URL.Query().Get("centre_id"), 10, 64)
	if err != nil || centreID <= 0 {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidQuery, "", nil)
		return
	}
	days, err := queryInt(r, "days", h.defaultWindowDays)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidQuery, "", nil)
		return
	}
	limit, err := queryInt(r, "limit", defaultCentreSessionsLimit)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidQuery, "", nil)
		return
	}
	if !identity.CanReportOnCentre(centreID) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: ErrForbidden})
		return
	}

	overviews, err := h.sessions.CentreHistory(r.Context(), centreID, days, limit)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"centre_id": centreID,
		"days":      days,
		"sessions":  newSessionOverviewViews(overviews),
	})
}
