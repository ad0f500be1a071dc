package tours

import (
	"testing"
	"time"
)

func summaryFixture() *TourRequest {
	return &TourRequest{
		ID:        "tour-1",
		UserID:    "user-1",
		ListingID: "listing-1",
		TimeSlots: []TimeSlot{
			{Date: "2025-06-12", Time: "13:30", Priority: 2},
			{Date: "2025-06-10", Time: "13:00", Priority: 1},
			{Date: "2025-06-12", Time: "14:30", Priority: 3},
		},
		ContactPhone:  "5551234567",
		ContactMethod: ContactPhone,
		Status:        StatusPending,
		CreatedAt:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuildSummaryGroupsAndOrders(t *testing.T) {
	summary := BuildSummary(summaryFixture())

	if summary.TourID != "tour-1" || summary.Status != StatusPending {
		t.Fatalf("summary header = %+v", summary)
	}
	if len(summary.Days) != 2 {
		t.Fatalf("Days = %d, want 2", len(summary.Days))
	}

	// 2025-06-10 holds the rank-1 slot, so it leads.
	if summary.Days[0].Date != "2025-06-10" {
		t.Fatalf("first day = %q, want 2025-06-10", summary.Days[0].Date)
	}
	if summary.Days[1].Date != "2025-06-12" {
		t.Fatalf("second day = %q, want 2025-06-12", summary.Days[1].Date)
	}

	// Slots within a day ascend by rank.
	second := summary.Days[1].Slots
	if len(second) != 2 || second[0].Priority != 2 || second[1].Priority != 3 {
		t.Fatalf("second day slots = %+v", second)
	}
}

func TestBuildSummaryDoesNotMutateInput(t *testing.T) {
	req := summaryFixture()
	BuildSummary(req)

	if req.TimeSlots[0].Priority != 2 || req.TimeSlots[0].Date != "2025-06-12" {
		t.Fatalf("input slots reordered: %+v", req.TimeSlots)
	}
}

func TestPreferredTimesSummary(t *testing.T) {
	got := PreferredTimesSummary(summaryFixture().TimeSlots)
	want := "1. 2025-06-10 at 13:00, 2. 2025-06-12 at 13:30, 3. 2025-06-12 at 14:30"
	if got != want {
		t.Fatalf("PreferredTimesSummary = %q, want %q", got, want)
	}

	if got := PreferredTimesSummary(nil); got != "" {
		t.Fatalf("empty slots produced %q", got)
	}
}

func TestPrioritySlot(t *testing.T) {
	slot := PrioritySlot(summaryFixture().TimeSlots)
	if slot == nil || slot.Date != "2025-06-10" || slot.Time != "13:00" {
		t.Fatalf("PrioritySlot = %+v", slot)
	}

	if PrioritySlot(nil) != nil {
		t.Fatal("PrioritySlot(nil) should be nil")
	}
}
