package listings

import "time"

// Listing is the slice of a rental listing the tour flow needs: identity,
// display fields, and whether the listing is visible for tour booking.
type Listing struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Address     string    `json:"address,omitempty"`
	City        string    `json:"city,omitempty"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}
