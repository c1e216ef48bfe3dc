package inventory

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/haniwon/clinic-platform/pkg/logging"
)

// Handler handles HTTP requests for inventory
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new inventory handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /api/inventory requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list inventory", "error", err)
		http.Error(w, "failed to list inventory", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"items": items,
		"count": len(items),
	})
}

// Save handles PUT /api/inventory requests (create or replace one item)
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var item Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.repo.Save(r.Context(), &item); err != nil {
		if errors.Is(err, ErrInvalidItem) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to save inventory item", "error", err)
		http.Error(w, "failed to save inventory item", http.StatusInternalServerError)
		return
	}

	h.logger.Info("inventory item saved", "id", item.ID, "name", item.Name)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}
