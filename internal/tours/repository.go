package tours

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for tour request storage
type Repository interface {
	Insert(ctx context.Context, req *TourRequest) (*TourRequest, error)
	GetByID(ctx context.Context, id string) (*TourRequest, error)
	ListByUser(ctx context.Context, userID string) ([]*TourRequest, error)
	QueryActiveByUser(ctx context.Context, userID string) ([]*TourRequest, error)
	QueryActiveByListing(ctx context.Context, listingID string) ([]*TourRequest, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*TourRequest, error)
}

// InMemoryRepository is a stub implementation of Repository using in-memory
// storage, used in tests and local development.
type InMemoryRepository struct {
	mu       sync.RWMutex
	requests map[string]*TourRequest
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		requests: make(map[string]*TourRequest),
	}
}

// Insert stores a new tour request, assigning id and timestamps.
func (r *InMemoryRepository) Insert(ctx context.Context, req *TourRequest) (*TourRequest, error) {
	stored := *req
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.mu.Lock()
	r.requests[stored.ID] = &stored
	r.mu.Unlock()

	out := stored
	return &out, nil
}

// GetByID retrieves a tour request by id.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*TourRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, ErrTourNotFound
	}
	out := *req
	return &out, nil
}

// ListByUser returns every request of a user, newest first.
func (r *InMemoryRepository) ListByUser(ctx context.Context, userID string) ([]*TourRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*TourRequest
	for _, req := range r.requests {
		if req.UserID == userID {
			cp := *req
			out = append(out, &cp)
		}
	}
	sortByCreatedDesc(out)
	return out, nil
}

// QueryActiveByUser returns a user's pending/confirmed/contacted requests.
func (r *InMemoryRepository) QueryActiveByUser(ctx context.Context, userID string) ([]*TourRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*TourRequest
	for _, req := range r.requests {
		if req.UserID == userID && req.Status.Active() {
			cp := *req
			out = append(out, &cp)
		}
	}
	sortByCreatedDesc(out)
	return out, nil
}

// QueryActiveByListing returns active requests touching a listing as
// primary or additional.
func (r *InMemoryRepository) QueryActiveByListing(ctx context.Context, listingID string) ([]*TourRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*TourRequest
	for _, req := range r.requests {
		if req.Status.Active() && req.References(listingID) {
			cp := *req
			out = append(out, &cp)
		}
	}
	sortByCreatedDesc(out)
	return out, nil
}

// UpdateStatus transitions a request and bumps updated_at.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, status Status) (*TourRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, ErrTourNotFound
	}
	req.Status = status
	req.UpdatedAt = time.Now().UTC()
	out := *req
	return &out, nil
}

func sortByCreatedDesc(reqs []*TourRequest) {
	for i := 1; i < len(reqs); i++ {
		for j := i; j > 0 && reqs[j-1].CreatedAt.Before(reqs[j].CreatedAt); j-- {
			reqs[j-1], reqs[j] = reqs[j], reqs[j-1]
		}
	}
}
