package tours

import (
	"strings"
	"time"
)

// Selection caps for a single tour request.
const (
	MaxSelectedDates = 3
	MaxTimeSlots     = 3
	MaxSlotsPerDate  = 3
)

// DateLayout is the wire format for calendar dates (no time component).
const DateLayout = "2006-01-02"

// TimeLayout is the wire format for slot clock values.
const TimeLayout = "15:04"

// Status tracks where a tour request is in its lifecycle. The service only
// ever creates requests as pending; later transitions are made by agents.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusContacted Status = "contacted"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusContacted, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether a request with this status still blocks new
// requests for the same listings.
func (s Status) Active() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusContacted:
		return true
	}
	return false
}

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ContactMethod is how the requester wants to be reached.
type ContactMethod string

const (
	ContactEmail ContactMethod = "email"
	ContactPhone ContactMethod = "phone"
	ContactBoth  ContactMethod = "both"
)

// Valid reports whether m is a known contact method.
func (m ContactMethod) Valid() bool {
	return m == ContactEmail || m == ContactPhone || m == ContactBoth
}

// TimeSlot is a requested (date, time) pair with its preference rank.
// Priorities across a request's slots are always dense: 1..N.
type TimeSlot struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Priority int    `json:"priority"`
}

// TourRequest is the persisted tour booking request.
type TourRequest struct {
	ID                    string        `json:"id"`
	UserID                string        `json:"user_id"`
	ListingID             string        `json:"listing_id"`
	AdditionalListingIDs  []string      `json:"additional_listing_ids,omitempty"`
	SelectedDates         []string      `json:"selected_dates"`
	TimeSlots             []TimeSlot    `json:"time_slots"`
	ContactPhone          string        `json:"contact_phone"`
	ContactMethod         ContactMethod `json:"contact_method"`
	Notes                 string        `json:"notes,omitempty"`
	PreferredTimesSummary string        `json:"preferred_times_summary"`
	PrioritySlot          *TimeSlot     `json:"priority_slot,omitempty"`
	Status                Status        `json:"status"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

// ListingIDs returns the primary listing followed by any bundled listings.
func (t *TourRequest) ListingIDs() []string {
	ids := make([]string, 0, 1+len(t.AdditionalListingIDs))
	ids = append(ids, t.ListingID)
	ids = append(ids, t.AdditionalListingIDs...)
	return ids
}

// References reports whether the request covers the listing as primary or
// additional.
func (t *TourRequest) References(listingID string) bool {
	if t.ListingID == listingID {
		return true
	}
	for _, id := range t.AdditionalListingIDs {
		if id == listingID {
			return true
		}
	}
	return false
}

// normalizeAdditionalIDs dedupes the bundled listing ids, preserving order
// and dropping blanks and the primary id.
func normalizeAdditionalIDs(primary string, ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := map[string]struct{}{primary: {}}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validPriorities reports whether the slots carry a dense 1..N ranking.
func validPriorities(slots []TimeSlot) bool {
	seen := make(map[int]struct{}, len(slots))
	for _, s := range slots {
		if s.Priority < 1 || s.Priority > len(slots) {
			return false
		}
		if _, ok := seen[s.Priority]; ok {
			return false
		}
		seen[s.Priority] = struct{}{}
	}
	return true
}
