package handlers

import (
	"net/http"

	"wordladder/internal/models"
	"wordladder/internal/validation"
)

type createDailyRequest struct {
	Count       *int   `json:"count"`
	DisplayName string `json:"display_name"`
}

type createReviewRequest struct {
	WindowDays  *int   `json:"window_days"`
	Count       *int   `json:"count"`
	DisplayName string `json:"display_name"`
}

type createScreeningRequest struct {
	AgeBandID int64 `json:"age_band_id"`
}

type submitRequest struct {
	Answers []models.Answer `json:"answers"`
}

func (h *Handler) handleCreateDailySession(w http.ResponseWriter, r *http.Request) {
	var req createDailyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	learner := learnerOf(identityOf(r))
	session, err := h.sessions.CreateDailySession(r.Context(), learner, intOr(req.Count, h.defaultItemCount), req.DisplayName)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionView(*session))
}

func (h *Handler) handleCreateReviewSession(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	learner := learnerOf(identityOf(r))
	session, err := h.sessions.CreateReviewSession(r.Context(), learner,
		intOr(req.WindowDays, h.defaultWindowDays),
		intOr(req.Count, h.defaultItemCount),
		req.DisplayName)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionView(*session))
}

func (h *Handler) handleCreateScreeningSession(w http.ResponseWriter, r *http.Request) {
	var req createScreeningRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}
	if req.AgeBandID <= 0 {
		h.respondWithServiceError(w, &validation.Error{Field: "age_band_id", Message: "age_band_id is required"})
		return
	}

	learner := learnerOf(identityOf(r))
	session, err := h.sessions.CreateScreeningSession(r.Context(), learner, req.AgeBandID)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionView(*session))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultHistoryLimit)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidQuery, "", nil)
		return
	}

	overviews, err := h.sessions.History(r.Context(), identityOf(r).LearnerID, limit)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sessions": newSessionOverviewViews(overviews)})
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidID, "", nil)
		return
	}

	detail, err := h.sessions.GetSession(r.Context(), sessionID, identityOf(r).LearnerID)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionDetailView(detail))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidID, "", nil)
		return
	}

	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	result, err := h.sessions.Submit(r.Context(), sessionID, identityOf(r).LearnerID, req.Answers)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, submitResultView{
		SessionID:        result.SessionID,
		Correct:          result.Correct,
		Total:            result.Total,
		Score:            result.Score(),
		Missed:           newMissedItemViews(result.Missed),
		RecommendedFocus: newSoundGroupCountViews(result.RecommendedFocus),
	})
}

func (h *Handler) handleSessionSummary(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidID, "", nil)
		return
	}

	summary, err := h.analyzer.SessionSummary(r.Context(), sessionID, identityOf(r).LearnerID)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryView{
		Session:          newSessionView(summary.Session),
		Correct:          summary.Correct,
		Total:            summary.Total,
		Missed:           newMissedItemViews(summary.Missed),
		SoundGroups:      newSoundGroupCountViews(summary.SoundGroups),
		RecommendedFocus: newSoundGroupCountViews(summary.RecommendedFocus),
	})
}
