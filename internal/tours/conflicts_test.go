package tours

import (
	"context"
	"errors"
	"testing"
)

// stubRequestSource serves canned active requests or an error.
type stubRequestSource struct {
	active []*TourRequest
	err    error
}

func (s *stubRequestSource) QueryActiveByUser(ctx context.Context, userID string) ([]*TourRequest, error) {
	return s.active, s.err
}

func TestHasDuplicateRequest(t *testing.T) {
	existing := &TourRequest{
		ID:                   "tour-1",
		UserID:               "user-1",
		ListingID:            "listing-a",
		AdditionalListingIDs: []string{"listing-b"},
		Status:               StatusPending,
	}
	checker := NewConflictChecker(&stubRequestSource{active: []*TourRequest{existing}}, nil)
	ctx := context.Background()

	tests := []struct {
		name       string
		listingIDs []string
		wantDup    bool
	}{
		{"primary listing match", []string{"listing-a"}, true},
		{"additional listing match", []string{"listing-b"}, true},
		{"bundle touching additional", []string{"listing-z", "listing-b"}, true},
		{"unrelated listing", []string{"listing-z"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dup, err := checker.HasDuplicateRequest(ctx, "user-1", tt.listingIDs)
			if err != nil {
				t.Fatalf("HasDuplicateRequest: %v", err)
			}
			if tt.wantDup && (dup == nil || dup.ID != "tour-1") {
				t.Fatalf("got %+v, want existing tour-1", dup)
			}
			if !tt.wantDup && dup != nil {
				t.Fatalf("got %+v, want no duplicate", dup)
			}
		})
	}
}

func TestHasDuplicateRequestEmptyStore(t *testing.T) {
	checker := NewConflictChecker(&stubRequestSource{}, nil)

	dup, err := checker.HasDuplicateRequest(context.Background(), "user-1", []string{"listing-a"})
	if err != nil {
		t.Fatalf("empty store should not error: %v", err)
	}
	if dup != nil {
		t.Fatalf("got %+v, want nil", dup)
	}
}

func TestHasDuplicateRequestSourceError(t *testing.T) {
	boom := errors.New("connection refused")
	checker := NewConflictChecker(&stubRequestSource{err: boom}, nil)

	if _, err := checker.HasDuplicateRequest(context.Background(), "user-1", []string{"listing-a"}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped source error", err)
	}
}

func TestFindTimeConflicts(t *testing.T) {
	active := []*TourRequest{
		{
			ID:        "tour-1",
			ListingID: "listing-a",
			Status:    StatusConfirmed,
			TimeSlots: []TimeSlot{
				{Date: "2025-06-10", Time: "09:00", Priority: 1},
				{Date: "2025-06-11", Time: "14:00", Priority: 2},
			},
		},
	}
	checker := NewConflictChecker(&stubRequestSource{active: active}, nil)
	ctx := context.Background()

	t.Run("exact match conflicts", func(t *testing.T) {
		conflicts, err := checker.FindTimeConflicts(ctx, "user-1", []TimeSlot{
			{Date: "2025-06-10", Time: "09:00", Priority: 1},
		}, "")
		if err != nil {
			t.Fatalf("FindTimeConflicts: %v", err)
		}
		if len(conflicts) != 1 || conflicts[0].ExistingRequestID != "tour-1" {
			t.Fatalf("conflicts = %+v", conflicts)
		}
	})

	t.Run("same date different time is clear", func(t *testing.T) {
		conflicts, err := checker.FindTimeConflicts(ctx, "user-1", []TimeSlot{
			{Date: "2025-06-10", Time: "09:30", Priority: 1},
		}, "")
		if err != nil {
			t.Fatalf("FindTimeConflicts: %v", err)
		}
		if len(conflicts) != 0 {
			t.Fatalf("conflicts = %+v, want none", conflicts)
		}
	})

	t.Run("exclude id skips own request", func(t *testing.T) {
		conflicts, err := checker.FindTimeConflicts(ctx, "user-1", []TimeSlot{
			{Date: "2025-06-10", Time: "09:00", Priority: 1},
		}, "tour-1")
		if err != nil {
			t.Fatalf("FindTimeConflicts: %v", err)
		}
		if len(conflicts) != 0 {
			t.Fatalf("conflicts = %+v, want none when excluding tour-1", conflicts)
		}
	})
}
