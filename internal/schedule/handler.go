package schedule

import (
	"encoding/json"
	"net/http"

	"github.com/haniwon/clinic-platform/pkg/logging"
)

// Handler handles HTTP requests for the calendar
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new schedule handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /api/schedule?from=YYYY-MM-DD&to=YYYY-MM-DD requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	events, err := h.repo.ListRange(r.Context(), from, to)
	if err != nil {
		h.logger.Error("failed to list schedule events", "error", err)
		http.Error(w, "failed to list schedule events", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"events": events,
		"count":  len(events),
	})
}
