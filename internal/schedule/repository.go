package schedule

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrEventExists is returned when an event ID is already taken.
var ErrEventExists = errors.New("schedule event already exists")

// Repository defines the interface for calendar event storage
type Repository interface {
	Create(ctx context.Context, event *Event) error
	ListRange(ctx context.Context, from, to string) ([]Event, error)
}

// InMemoryRepository is a Repository backed by a mutex-guarded map.
type InMemoryRepository struct {
	mu     sync.RWMutex
	events map[string]*Event
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{events: make(map[string]*Event)}
}

// Create stores a new event.
func (r *InMemoryRepository) Create(ctx context.Context, event *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.events[event.ID]; exists {
		return ErrEventExists
	}
	copied := *event
	r.events[event.ID] = &copied
	return nil
}

// ListRange returns events whose start date (YYYY-MM-DD) falls inside the
// inclusive range. Empty bounds are open-ended.
func (r *InMemoryRepository) ListRange(ctx context.Context, from, to string) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Event
	for _, event := range r.events {
		day := event.Start.Format("2006-01-02")
		if from != "" && day < from {
			continue
		}
		if to != "" && day > to {
			continue
		}
		out = append(out, *event)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}
