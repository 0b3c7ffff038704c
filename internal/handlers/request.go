package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"wordladder/internal/models"
	"wordladder/internal/security"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}

// queryInt reads an optional integer query parameter
func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}

func identityOf(r *http.Request) security.Identity {
	identity, _ := security.IdentityFromContext(r.Context())
	return identity
}

func learnerOf(identity security.Identity) models.Learner {
	return models.Learner{ID: identity.LearnerID, CentreID: identity.CentreID}
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
