package tours

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SummaryDay groups a request's slots for a single date, ranked ascending.
type SummaryDay struct {
	Date  string     `json:"date"`
	Slots []TimeSlot `json:"slots"`
}

// Summary is the read-only confirmation projection of a persisted request.
type Summary struct {
	TourID               string        `json:"tour_id"`
	ListingID            string        `json:"listing_id"`
	AdditionalListingIDs []string      `json:"additional_listing_ids,omitempty"`
	Status               Status        `json:"status"`
	ContactPhone         string        `json:"contact_phone"`
	ContactMethod        ContactMethod `json:"contact_method"`
	Notes                string        `json:"notes,omitempty"`
	Days                 []SummaryDay  `json:"days"`
	PreferredTimes       string        `json:"preferred_times"`
	CreatedAt            time.Time     `json:"created_at"`
}

// BuildSummary projects a persisted request for display. Slots are grouped
// by date; dates are ordered by their best (minimum) rank, and slots within
// a date by rank ascending. Pure: no I/O, input is not modified.
func BuildSummary(req *TourRequest) Summary {
	byDate := make(map[string][]TimeSlot)
	var order []string
	for _, slot := range req.TimeSlots {
		if _, ok := byDate[slot.Date]; !ok {
			order = append(order, slot.Date)
		}
		byDate[slot.Date] = append(byDate[slot.Date], slot)
	}

	days := make([]SummaryDay, 0, len(order))
	for _, date := range order {
		slots := append([]TimeSlot(nil), byDate[date]...)
		sort.Slice(slots, func(i, j int) bool { return slots[i].Priority < slots[j].Priority })
		days = append(days, SummaryDay{Date: date, Slots: slots})
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Slots[0].Priority < days[j].Slots[0].Priority
	})

	return Summary{
		TourID:               req.ID,
		ListingID:            req.ListingID,
		AdditionalListingIDs: append([]string(nil), req.AdditionalListingIDs...),
		Status:               req.Status,
		ContactPhone:         req.ContactPhone,
		ContactMethod:        req.ContactMethod,
		Notes:                req.Notes,
		Days:                 days,
		PreferredTimes:       PreferredTimesSummary(req.TimeSlots),
		CreatedAt:            req.CreatedAt,
	}
}

// PreferredTimesSummary renders the slots as a single human-readable line,
// ordered by priority: "1. 2025-06-10 at 13:00, 2. 2025-06-12 at 13:30".
func PreferredTimesSummary(slots []TimeSlot) string {
	if len(slots) == 0 {
		return ""
	}
	ordered := append([]TimeSlot(nil), slots...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })

	parts := make([]string, len(ordered))
	for i, s := range ordered {
		parts[i] = fmt.Sprintf("%d. %s at %s", s.Priority, s.Date, s.Time)
	}
	return strings.Join(parts, ", ")
}

// PrioritySlot returns the rank-1 slot, or nil when there are no slots.
func PrioritySlot(slots []TimeSlot) *TimeSlot {
	for _, s := range slots {
		if s.Priority == 1 {
			slot := s
			return &slot
		}
	}
	return nil
}
