package tours

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSelectionLimit is returned when a draft mutation would exceed the
	// date cap, the global slot cap, or the per-date slot cap.
	ErrSelectionLimit = errors.New("selection limit exceeded")

	// ErrInvalidDate is returned for dates that do not parse as YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidPeriod is returned for unknown day periods.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrUnknownDate is returned when a slot or period refers to a date that
	// is not part of the current selection.
	ErrUnknownDate = errors.New("date not selected")

	// ErrSlotNotOffered is returned when a time is not one of the candidate
	// slots for the date's current period.
	ErrSlotNotOffered = errors.New("time slot not offered for this period")

	// ErrInvalidSlotIndex is returned by promote when the index is out of range.
	ErrInvalidSlotIndex = errors.New("slot index out of range")

	// Phone validation failures.
	ErrPhoneTooShort      = errors.New("phone number too short")
	ErrPhoneTooLong       = errors.New("phone number too long")
	ErrPhoneCountryFormat = errors.New("phone number does not match country format")
	ErrPhoneImplausible   = errors.New("phone number is implausible")

	// Submission failures.
	ErrNoSlotsSelected      = errors.New("no time slots selected")
	ErrMissingContact       = errors.New("contact phone is required")
	ErrInvalidContact       = errors.New("contact phone is invalid")
	ErrInvalidContactMethod = errors.New("invalid contact method")
	ErrDateOutOfWindow      = errors.New("tour date outside booking window")
	ErrDuplicateRequest     = errors.New("an active tour request already exists for this listing")
	ErrProfileUpdate        = errors.New("failed to update contact profile")
	ErrSubmissionFailed     = errors.New("tour request submission failed")
	ErrSubmissionInFlight   = errors.New("a submission is already in progress")
	ErrListingUnavailable   = errors.New("listing not available for tours")

	// ErrTourNotFound is returned when a request id does not exist.
	ErrTourNotFound = errors.New("tour request not found")

	// ErrInvalidStatus is returned for unknown status values.
	ErrInvalidStatus = errors.New("invalid tour status")

	// ErrTourFinalized is returned when a completed or cancelled request is
	// asked to transition again.
	ErrTourFinalized = errors.New("tour request already finalized")

	// ErrNotRequester is returned when a user acts on someone else's request.
	ErrNotRequester = errors.New("tour request belongs to another user")
)

// DuplicateRequestError carries the existing active request so callers can
// show when it was created. errors.Is(err, ErrDuplicateRequest) holds.
type DuplicateRequestError struct {
	ExistingID        string
	ExistingCreatedAt time.Time
}

func (e *DuplicateRequestError) Error() string {
	return fmt.Sprintf("an active tour request already exists (created %s)",
		e.ExistingCreatedAt.Format(DateLayout))
}

// Is makes the typed error match the ErrDuplicateRequest sentinel.
func (e *DuplicateRequestError) Is(target error) bool {
	return target == ErrDuplicateRequest
}
