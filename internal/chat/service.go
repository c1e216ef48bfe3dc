package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/haniwon/clinic-platform/internal/ambiguity"
	"github.com/haniwon/clinic-platform/internal/parser"
	"github.com/haniwon/clinic-platform/pkg/logging"
)

// StockDeducter applies per-herb stock decrements. Implemented by the
// inventory service.
type StockDeducter interface {
	DeductHerbs(ctx context.Context, herbs []parser.Herb)
}

// Service routes room messages through storage and, for the prescription
// room, through the ambiguity gate and inventory deduction.
type Service struct {
	store        Store
	hub          *Hub
	gate         *ambiguity.Gate
	deducter     StockDeducter
	logger       *logging.Logger
	rxRoomID     string
	systemSender string
}

// NewService wires the chat pipeline. hub and deducter may be nil.
func NewService(store Store, hub *Hub, gate *ambiguity.Gate, deducter StockDeducter, logger *logging.Logger, rxRoomID, systemSender string) *Service {
	if store == nil {
		panic("chat: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:        store,
		hub:          hub,
		gate:         gate,
		deducter:     deducter,
		logger:       logger,
		rxRoomID:     rxRoomID,
		systemSender: systemSender,
	}
}

// Send appends a staff message to a room.
//
// In the prescription room the text is parsed and gated first. An ambiguous
// herb name returns *ambiguity.BlockedError and the message is NOT stored;
// the caller gets the untouched text back for correction. A clean
// prescription is stored and then deducts stock per extracted herb.
func (s *Service) Send(ctx context.Context, roomID, sender, text string) (*Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("chat: empty message")
	}

	var herbs []parser.Herb
	if roomID == s.rxRoomID {
		parsed := parser.Parse(text)
		if finding := s.gate.Check(parsed.Herbs); finding.Blocked {
			s.logger.Warn("chat message blocked by ambiguity gate",
				"room", roomID, "matches", finding.Matches)
			return nil, &ambiguity.BlockedError{Matches: finding.Matches, RawText: text}
		}
		herbs = parsed.Herbs
	}

	msg := Message{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		Sender:    sender,
		Text:      text,
		Kind:      KindUser,
		Timestamp: time.Now().UTC(),
	}
	if err := s.store.Append(ctx, roomID, msg); err != nil {
		return nil, err
	}

	if len(herbs) > 0 && s.deducter != nil {
		s.deducter.DeductHerbs(ctx, herbs)
	}

	if s.hub != nil {
		s.hub.Broadcast(msg)
	}
	return &msg, nil
}

// PostSystem appends an automated notice. Notices bypass the gate: they are
// generated after a prescription already passed it.
func (s *Service) PostSystem(ctx context.Context, roomID, text string) error {
	msg := Message{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		Sender:    s.systemSender,
		Text:      text,
		Kind:      KindSystem,
		Timestamp: time.Now().UTC(),
	}
	if err := s.store.Append(ctx, roomID, msg); err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.Broadcast(msg)
	}
	return nil
}

// History returns the most recent messages of a room.
func (s *Service) History(ctx context.Context, roomID string, limit int64) ([]Message, error) {
	return s.store.List(ctx, roomID, limit)
}
