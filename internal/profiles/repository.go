package profiles

import (
	"context"
	"sync"
	"time"
)

// Repository defines the interface for profile storage
type Repository interface {
	GetByID(ctx context.Context, userID string) (*Profile, error)
	UpdatePhone(ctx context.Context, userID, phone string) error
}

// InMemoryRepository is a stub implementation of Repository using in-memory
// storage.
type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		profiles: make(map[string]*Profile),
	}
}

// Put seeds a profile (tests and local development).
func (r *InMemoryRepository) Put(p *Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	cp.UpdatedAt = cp.CreatedAt
	r.profiles[cp.ID] = &cp
}

// GetByID retrieves a profile by user id.
func (r *InMemoryRepository) GetByID(ctx context.Context, userID string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

// UpdatePhone stores a new on-file phone number.
func (r *InMemoryRepository) UpdatePhone(ctx context.Context, userID, phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[userID]
	if !ok {
		return ErrProfileNotFound
	}
	p.Phone = phone
	p.UpdatedAt = time.Now().UTC()
	return nil
}
