package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"wordladder/internal/service"
	"wordladder/internal/validation"
)

type errorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	Positions []int  `json:"positions,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, logger *slog.Logger, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		logger.Error(logMsg, "status", status, "error", err)
	}

	writeJSON(w, status, errorResponse{Error: userMsg})
}

// respondWithServiceError maps core errors onto HTTP statuses
func (h *Handler) respondWithServiceError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:     verr.Message,
			Field:     verr.Field,
			Positions: verr.Positions,
		})
		return
	}

	for _, mapping := range []struct {
		target error
		status int
	}{
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrAlreadySubmitted, http.StatusConflict},
		{service.ErrNotSubmitted, http.StatusConflict},
		{service.ErrCycle, http.StatusConflict},
		{service.ErrPositionConflict, http.StatusConflict},
		{service.ErrNoContent, http.StatusUnprocessableEntity},
	} {
		if errors.Is(err, mapping.target) {
			writeJSON(w, mapping.status, errorResponse{Error: mapping.target.Error()})
			return
		}
	}

	respondWithError(w, h.logger, http.StatusInternalServerError, ErrInternalServerError, "request failed", err)
}
