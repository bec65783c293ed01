package catalog

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Handler serves the read-only value catalog.
type Handler struct {
	store  *Store
	logger *slog.Logger
}

// NewHandler creates a catalog Handler.
func NewHandler(store *Store) *Handler {
	return &Handler{
		store:  store,
		logger: slog.Default().With("component", "catalog-handler"),
	}
}

// Values serves GET /api/v1/values with the full value catalog, the set
// users pick their supported and avoided values from.
func (h *Handler) Values(w http.ResponseWriter, r *http.Request) {
	values, err := h.store.Values(r.Context())
	if err != nil {
		h.logger.Error("failed to load value catalog", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "loading values failed"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"count":  len(values),
		"values": values,
	}); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}
