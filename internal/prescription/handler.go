package prescription

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/haniwon/clinic-platform/internal/ambiguity"
	"github.com/haniwon/clinic-platform/pkg/logging"
)

// Handler handles HTTP requests for prescriptions
type Handler struct {
	service *Service
	repo    Repository
	logger  *logging.Logger
}

// NewHandler creates a new prescription handler
func NewHandler(service *Service, repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, repo: repo, logger: logger}
}

// ProcessRequest is the body of POST /api/prescriptions/process.
type ProcessRequest struct {
	Text string `json:"text"`
	// PrescribedDate is YYYY-MM-DD; empty means today.
	PrescribedDate string `json:"prescribedDate,omitempty"`
	// DurationDays is the operator-chosen dispensing period (the UI offers
	// 7/15/30). Zero defers to the memo, then the 15-day default.
	DurationDays int `json:"durationDays,omitempty"`
}

// Process handles POST /api/prescriptions/process requests. Status codes map
// the workflow outcomes: 200 success, 400 unusable text, 409 ambiguity block,
// 422 unregistered patient.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	if req.DurationDays < 0 {
		http.Error(w, "durationDays must not be negative", http.StatusBadRequest)
		return
	}

	prescribedDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.PrescribedDate != "" {
		parsed, err := time.Parse("2006-01-02", req.PrescribedDate)
		if err != nil {
			http.Error(w, "prescribedDate must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		prescribedDate = parsed
	}

	result, err := h.service.ProcessText(r.Context(), req.Text, prescribedDate, req.DurationDays)
	if err != nil {
		var blocked *ambiguity.BlockedError
		if errors.As(err, &blocked) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]any{
				"error":   "ambiguous herb names need disambiguation",
				"matches": blocked.Matches,
				"rawText": blocked.RawText,
			})
			return
		}
		h.logger.Error("failed to process prescription", "error", err)
		http.Error(w, "failed to process prescription", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch result.Status {
	case StatusError:
		w.WriteHeader(http.StatusBadRequest)
	case StatusNeedsRegistration:
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	json.NewEncoder(w).Encode(result)
}

// List handles GET /api/prescriptions requests. An optional patientId query
// parameter narrows the list to one patient.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		list []Prescription
		err  error
	)
	if patientID := r.URL.Query().Get("patientId"); patientID != "" {
		list, err = h.repo.ListByPatient(r.Context(), patientID)
	} else {
		list, err = h.repo.List(r.Context())
	}
	if err != nil {
		h.logger.Error("failed to list prescriptions", "error", err)
		http.Error(w, "failed to list prescriptions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"prescriptions": list,
		"count":         len(list),
	})
}

// Get handles GET /api/prescriptions/{prescriptionID} requests
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "prescriptionID")
	if id == "" {
		http.Error(w, "missing prescription id", http.StatusBadRequest)
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPrescriptionNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load prescription", "error", err, "id", id)
		http.Error(w, "failed to load prescription", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}
