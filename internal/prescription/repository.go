package prescription

import (
	"context"
	"sort"
	"sync"
)

// Repository defines the interface for prescription storage
type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id string) (*Prescription, error)
	List(ctx context.Context) ([]Prescription, error)
	ListByPatient(ctx context.Context, patientID string) ([]Prescription, error)
}

// InMemoryRepository is a Repository backed by a mutex-guarded map.
type InMemoryRepository struct {
	mu            sync.RWMutex
	prescriptions map[string]*Prescription
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{prescriptions: make(map[string]*Prescription)}
}

// Create stores a new prescription record.
func (r *InMemoryRepository) Create(ctx context.Context, p *Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *p
	r.prescriptions[p.ID] = &copied
	return nil
}

// GetByID retrieves a prescription by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prescriptions[id]
	if !ok {
		return nil, ErrPrescriptionNotFound
	}
	copied := *p
	return &copied, nil
}

// List returns all prescriptions ordered by creation time.
func (r *InMemoryRepository) List(ctx context.Context) ([]Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Prescription, 0, len(r.prescriptions))
	for _, p := range r.prescriptions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// ListByPatient returns a patient's prescriptions ordered by prescribed date.
func (r *InMemoryRepository) ListByPatient(ctx context.Context, patientID string) ([]Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Prescription
	for _, p := range r.prescriptions {
		if p.PatientID == patientID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PrescribedDate.Before(out[j].PrescribedDate)
	})
	return out, nil
}
