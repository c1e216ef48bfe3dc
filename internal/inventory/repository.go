package inventory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Repository defines the interface for inventory storage
type Repository interface {
	List(ctx context.Context) ([]Item, error)
	GetByName(ctx context.Context, name string) (*Item, error)
	Save(ctx context.Context, item *Item) error
	SetStock(ctx context.Context, id string, stock int) error
}

// InMemoryRepository is a Repository backed by a mutex-guarded map.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*Item
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{items: make(map[string]*Item)}
}

// List returns all items ordered by name.
func (r *InMemoryRepository) List(ctx context.Context) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Item, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetByName finds an item by its exact name.
func (r *InMemoryRepository) GetByName(ctx context.Context, name string) (*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.Name == name {
			copied := *item
			return &copied, nil
		}
	}
	return nil, ErrItemNotFound
}

// Save creates or replaces an item. A missing ID is generated.
func (r *InMemoryRepository) Save(ctx context.Context, item *Item) error {
	if item == nil || item.Name == "" {
		return ErrInvalidItem
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	r.mu.Lock()
	copied := *item
	r.items[item.ID] = &copied
	r.mu.Unlock()
	return nil
}

// SetStock overwrites the current stock level for an item.
func (r *InMemoryRepository) SetStock(ctx context.Context, id string, stock int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return ErrItemNotFound
	}
	item.CurrentStock = stock
	return nil
}
