package tours

import (
	"context"
	"fmt"

	"github.com/openhaus/tour-scheduler/pkg/logging"
)

// ActiveRequestSource lists a user's active tour requests. Satisfied by
// Repository; narrowed here so the checker can be tested with a stub.
type ActiveRequestSource interface {
	QueryActiveByUser(ctx context.Context, userID string) ([]*TourRequest, error)
}

// TimeConflict is an exact (date, half-hour) collision with an existing
// active request.
type TimeConflict struct {
	Date              string `json:"date"`
	Time              string `json:"time"`
	ExistingRequestID string `json:"existing_request_id"`
}

// ConflictChecker runs the pre-submission double-booking checks against the
// store. Best effort: it reads current state without isolation, so the
// store's unique constraint remains the true enforcement point.
type ConflictChecker struct {
	source ActiveRequestSource
	logger *logging.Logger
}

// NewConflictChecker constructs a checker over the given source.
func NewConflictChecker(source ActiveRequestSource, logger *logging.Logger) *ConflictChecker {
	if source == nil {
		panic("tours: active request source required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ConflictChecker{source: source, logger: logger}
}

// HasDuplicateRequest returns the first active request of userID that
// references any of listingIDs as primary or additional, or nil when there
// is none. An empty store is not an error.
func (c *ConflictChecker) HasDuplicateRequest(ctx context.Context, userID string, listingIDs []string) (*TourRequest, error) {
	active, err := c.source.QueryActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("tours: duplicate check: %w", err)
	}
	for _, existing := range active {
		for _, id := range listingIDs {
			if existing.References(id) {
				return existing, nil
			}
		}
	}
	return nil, nil
}

// FindTimeConflicts compares each requested (date, time) pair against every
// active request's slots. Sharing a date is only a conflict when the exact
// half-hour matches too. excludeID skips a request (e.g. when editing).
func (c *ConflictChecker) FindTimeConflicts(ctx context.Context, userID string, requested []TimeSlot, excludeID string) ([]TimeConflict, error) {
	active, err := c.source.QueryActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("tours: time conflict check: %w", err)
	}

	var conflicts []TimeConflict
	for _, want := range requested {
		for _, existing := range active {
			if excludeID != "" && existing.ID == excludeID {
				continue
			}
			for _, have := range existing.TimeSlots {
				if have.Date == want.Date && have.Time == want.Time {
					conflicts = append(conflicts, TimeConflict{
						Date:              want.Date,
						Time:              want.Time,
						ExistingRequestID: existing.ID,
					})
				}
			}
		}
	}
	return conflicts, nil
}
