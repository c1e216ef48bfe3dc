package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/haniwon/clinic-platform/internal/chat"
	httpmiddleware "github.com/haniwon/clinic-platform/internal/http/middleware"
	"github.com/haniwon/clinic-platform/internal/inventory"
	"github.com/haniwon/clinic-platform/internal/patients"
	"github.com/haniwon/clinic-platform/internal/prescription"
	"github.com/haniwon/clinic-platform/internal/schedule"
	"github.com/haniwon/clinic-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	PatientsHandler     *patients.Handler
	InventoryHandler    *inventory.Handler
	PrescriptionHandler *prescription.Handler
	ScheduleHandler     *schedule.Handler
	ChatHandler         *chat.Handler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.PatientsHandler != nil {
			api.Route("/patients", func(r chi.Router) {
				r.Get("/", cfg.PatientsHandler.List)
				r.Post("/", cfg.PatientsHandler.Create)
				r.Get("/{patientID}", cfg.PatientsHandler.Get)
				r.Delete("/{patientID}", cfg.PatientsHandler.Delete)
			})
		}

		if cfg.InventoryHandler != nil {
			api.Route("/inventory", func(r chi.Router) {
				r.Get("/", cfg.InventoryHandler.List)
				r.Put("/", cfg.InventoryHandler.Save)
			})
		}

		if cfg.PrescriptionHandler != nil {
			api.Route("/prescriptions", func(r chi.Router) {
				// Registration fans out to storage, calendar, and chat;
				// keep pasted-text bursts from hammering it.
				r.With(httpmiddleware.RateLimit(5, 10)).Post("/process", cfg.PrescriptionHandler.Process)
				r.Get("/", cfg.PrescriptionHandler.List)
				r.Get("/{prescriptionID}", cfg.PrescriptionHandler.Get)
			})
		}

		if cfg.ScheduleHandler != nil {
			api.Get("/schedule", cfg.ScheduleHandler.List)
		}

		if cfg.ChatHandler != nil {
			api.Route("/chat/rooms/{roomID}", func(r chi.Router) {
				r.Get("/messages", cfg.ChatHandler.History)
				r.Post("/messages", cfg.ChatHandler.Send)
				r.Get("/ws", cfg.ChatHandler.Subscribe)
			})
		}
	})

	return r
}
