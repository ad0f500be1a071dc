package listings

import (
	"context"
	"sync"
)

// Repository defines the interface for listing lookup
type Repository interface {
	// GetPublished returns the listing only when it exists and is published;
	// unpublished listings are reported as not found, matching what a
	// browsing user can see.
	GetPublished(ctx context.Context, id string) (*Listing, error)
}

// InMemoryRepository is a stub implementation of Repository using in-memory
// storage.
type InMemoryRepository struct {
	mu       sync.RWMutex
	listings map[string]*Listing
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		listings: make(map[string]*Listing),
	}
}

// Put seeds a listing (tests and local development).
func (r *InMemoryRepository) Put(l *Listing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.listings[cp.ID] = &cp
}

// GetPublished retrieves a published listing by id.
func (r *InMemoryRepository) GetPublished(ctx context.Context, id string) (*Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.listings[id]
	if !ok || !l.IsPublished {
		return nil, ErrListingNotFound
	}
	cp := *l
	return &cp, nil
}
