package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/net/websocket"

	"github.com/haniwon/clinic-platform/internal/ambiguity"
	"github.com/haniwon/clinic-platform/pkg/logging"
)

// Handler manages chat room HTTP and WebSocket endpoints.
type Handler struct {
	service      *Service
	hub          *Hub
	logger       *logging.Logger
	historyLimit int64
}

// NewHandler creates a new chat handler.
func NewHandler(service *Service, hub *Hub, historyLimit int64, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, hub: hub, logger: logger, historyLimit: historyLimit}
}

// SendRequest is the body of POST /api/chat/rooms/{roomID}/messages.
type SendRequest struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Send handles POST /api/chat/rooms/{roomID}/messages requests. An ambiguity
// block answers 409 with the matches and the untouched text.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	if roomID == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	msg, err := h.service.Send(r.Context(), roomID, req.Sender, req.Text)
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
		h.logger.Error("failed to send chat message", "error", err, "room", roomID)
		http.Error(w, "failed to send message", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(msg)
}

// History handles GET /api/chat/rooms/{roomID}/messages requests.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	if roomID == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}

	limit := h.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	msgs, err := h.service.History(r.Context(), roomID, limit)
	if err != nil {
		h.logger.Error("failed to load chat history", "error", err, "room", roomID)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	if msgs == nil {
		msgs = []Message{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"messages": msgs,
		"count":    len(msgs),
	})
}

// inboundMessage is what a WebSocket client sends.
type inboundMessage struct {
	Type   string `json:"type"` // "message", "ping"
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type wsError struct {
	Type    string   `json:"type"`
	Error   string   `json:"error"`
	Matches []string `json:"matches,omitempty"`
	RawText string   `json:"rawText,omitempty"`
}

// Subscribe handles GET /api/chat/rooms/{roomID}/ws. The connection gets the
// recent history, then receives every new room message as it lands.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	if roomID == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}

	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r, roomID)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request, roomID string) {
	if msgs, err := h.service.History(r.Context(), roomID, h.historyLimit); err == nil {
		for _, msg := range msgs {
			_ = websocket.JSON.Send(conn, msg)
		}
	}

	h.hub.Subscribe(roomID, conn)
	defer h.hub.Unsubscribe(roomID, conn)

	h.logger.Info("chat connection opened", "room", roomID)

	for {
		var msg inboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("chat connection closed", "room", roomID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, map[string]string{"type": "pong"})
			continue
		}
		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		if _, err := h.service.Send(r.Context(), roomID, msg.Sender, msg.Text); err != nil {
			var blocked *ambiguity.BlockedError
			if errors.As(err, &blocked) {
				_ = websocket.JSON.Send(conn, wsError{
					Type:    "blocked",
					Error:   "ambiguous herb names need disambiguation",
					Matches: blocked.Matches,
					RawText: blocked.RawText,
				})
				continue
			}
			h.logger.Error("failed to route chat message", "error", err, "room", roomID)
			_ = websocket.JSON.Send(conn, wsError{Type: "error", Error: "failed to send message"})
		}
	}
}
