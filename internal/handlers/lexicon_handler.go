package handlers

import (
	"net/http"
)

type insertComponentRequest struct {
	ComponentWordID int64 `json:"component_word_id"`
	Position        int   `json:"position"`
}

func (h *Handler) handleListWords(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil || limit < 0 {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidQuery, "", nil)
		return
	}

	words, err := h.graph.ListActiveWords(r.Context(), limit)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	views := make([]wordView, len(words))
	for i, word := range words {
		views[i] = newWordView(word)
	}
	writeJSON(w, http.StatusOK, map[string]any{"words": views})
}

func (h *Handler) handleListComponents(w http.ResponseWriter, r *http.Request) {
	wordID, err := pathID(r)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidID, "", nil)
		return
	}

	components, err := h.graph.ResolveComposition(r.Context(), wordID)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	views := make([]componentView, len(components))
	for i, c := range components {
		views[i] = componentView{Position: c.Position, Word: newWordView(c.Component)}
	}
	writeJSON(w, http.StatusOK, map[string]any{"word_id": wordID, "components": views})
}

func (h *Handler) handleInsertComponent(w http.ResponseWriter, r *http.Request) {
	parentID, err := pathID(r)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidID, "", nil)
		return
	}

	var req insertComponentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	component, err := h.graph.InsertComponent(r.Context(), parentID, req.ComponentWordID, req.Position)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, componentView{Position: component.Position, Word: newWordView(component.Component)})
}

func (h *Handler) handleListAgeBands(w http.ResponseWriter, r *http.Request) {
	bands, err := h.sessions.ListAgeBands(r.Context())
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	views := make([]ageBandView, len(bands))
	for i, b := range bands {
		views[i] = ageBandView{ID: b.ID, Label: b.Label, MinMonths: b.MinMonths, MaxMonths: b.MaxMonths}
	}
	writeJSON(w, http.StatusOK, map[string]any{"age_bands": views})
}
