package tours

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/openhaus/tour-scheduler/internal/listings"
	"github.com/openhaus/tour-scheduler/internal/observability/metrics"
	"github.com/openhaus/tour-scheduler/internal/profiles"
	"github.com/openhaus/tour-scheduler/pkg/logging"
)

var toursTracer = otel.Tracer("openhaus.internal.tours")

// Phase is where a user's submission currently is in the pipeline. The
// explicit phase doubles as the re-entrancy guard: a second submit for the
// same user while one is in flight is rejected, not queued.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseChecking   Phase = "checking"
	PhasePersisting Phase = "persisting"
)

// DefaultBookingWindowDays is how far ahead a tour date may be requested.
const DefaultBookingWindowDays = 30

// Submission is the draft plus contact details handed to Submit.
type Submission struct {
	UserID               string
	ListingID            string
	AdditionalListingIDs []string
	Draft                Draft
	ContactPhone         string
	CountryCode          string
	ContactMethod        ContactMethod
	Notes                string
}

// Service runs the tour request pipeline: validate, check for duplicates,
// sync the contact profile, persist, invalidate cached views. Failures
// leave the caller's draft untouched so a retry needs no re-entry.
type Service struct {
	repo     Repository
	profiles profiles.Repository
	listings listings.Repository
	checker  *ConflictChecker
	cache    *ViewCache
	metrics  *metrics.TourMetrics
	logger   *logging.Logger

	windowDays int
	now        func() time.Time

	mu       sync.Mutex
	inflight map[string]Phase
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithCache attaches the redis view cache.
func WithCache(cache *ViewCache) ServiceOption {
	return func(s *Service) { s.cache = cache }
}

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *metrics.TourMetrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithBookingWindow overrides how many days ahead tours may be booked.
func WithBookingWindow(days int) ServiceOption {
	return func(s *Service) {
		if days > 0 {
			s.windowDays = days
		}
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs the tour request service.
func NewService(repo Repository, profileRepo profiles.Repository, listingRepo listings.Repository, logger *logging.Logger, opts ...ServiceOption) *Service {
	if repo == nil {
		panic("tours: repository required")
	}
	if profileRepo == nil {
		panic("tours: profile repository required")
	}
	if listingRepo == nil {
		panic("tours: listing repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		repo:       repo,
		profiles:   profileRepo,
		listings:   listingRepo,
		logger:     logger,
		windowDays: DefaultBookingWindowDays,
		now:        time.Now,
		inflight:   make(map[string]Phase),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.checker = NewConflictChecker(repo, logger)
	return s
}

// Phase reports where a user's submission currently is.
func (s *Service) Phase(userID string) Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.inflight[userID]; ok {
		return p
	}
	return PhaseIdle
}

func (s *Service) begin(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inflight[userID]; ok {
		return false
	}
	s.inflight[userID] = PhaseValidating
	return true
}

func (s *Service) setPhase(userID string, p Phase) {
	s.mu.Lock()
	s.inflight[userID] = p
	s.mu.Unlock()
}

func (s *Service) end(userID string) {
	s.mu.Lock()
	delete(s.inflight, userID)
	s.mu.Unlock()
}

// Submit runs the full pipeline and returns the persisted request.
func (s *Service) Submit(ctx context.Context, sub Submission) (*TourRequest, error) {
	start := s.now()
	if !s.begin(sub.UserID) {
		return nil, ErrSubmissionInFlight
	}
	defer s.end(sub.UserID)

	ctx, span := toursTracer.Start(ctx, "tours.submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("tours.user_id", sub.UserID),
		attribute.String("tours.listing_id", sub.ListingID),
	)

	req, err := s.submit(ctx, sub)
	if err != nil {
		span.RecordError(err)
	}
	s.metrics.ObserveSubmission(submitOutcome(err), s.now().Sub(start).Seconds())
	return req, err
}

func (s *Service) submit(ctx context.Context, sub Submission) (*TourRequest, error) {
	// Validating
	sub.ContactPhone = strings.TrimSpace(sub.ContactPhone)
	if sub.ContactMethod == "" {
		sub.ContactMethod = ContactPhone
	}
	sub.AdditionalListingIDs = normalizeAdditionalIDs(sub.ListingID, sub.AdditionalListingIDs)

	slots := sub.Draft.TimeSlots()
	if err := s.validate(&sub, slots); err != nil {
		return nil, err
	}

	if _, err := s.listings.GetPublished(ctx, sub.ListingID); err != nil {
		if errors.Is(err, listings.ErrListingNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrListingUnavailable, sub.ListingID)
		}
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	// Checking
	s.setPhase(sub.UserID, PhaseChecking)
	allListings := append([]string{sub.ListingID}, sub.AdditionalListingIDs...)
	existing, err := s.checker.HasDuplicateRequest(ctx, sub.UserID, allListings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	if existing != nil {
		s.metrics.ObserveConflictCheck("duplicate")
		return nil, &DuplicateRequestError{
			ExistingID:        existing.ID,
			ExistingCreatedAt: existing.CreatedAt,
		}
	}
	conflicts, err := s.checker.FindTimeConflicts(ctx, sub.UserID, slots, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	if len(conflicts) > 0 {
		// Overlap with a tour for a different listing is worth flagging but
		// does not block the request.
		s.metrics.ObserveConflictCheck("overlap")
		s.logger.Warn("tour request overlaps existing tours",
			"user_id", sub.UserID, "conflicts", len(conflicts))
	} else {
		s.metrics.ObserveConflictCheck("clear")
	}

	// Profile sync: never persist a request whose contact info we failed to
	// save.
	if err := s.syncProfilePhone(ctx, sub.UserID, sub.ContactPhone); err != nil {
		return nil, err
	}

	// Persisting
	s.setPhase(sub.UserID, PhasePersisting)
	req := &TourRequest{
		UserID:                sub.UserID,
		ListingID:             sub.ListingID,
		AdditionalListingIDs:  sub.AdditionalListingIDs,
		SelectedDates:         sub.Draft.SelectedDateStrings(),
		TimeSlots:             slots,
		ContactPhone:          sub.ContactPhone,
		ContactMethod:         sub.ContactMethod,
		Notes:                 sub.Notes,
		PreferredTimesSummary: PreferredTimesSummary(slots),
		PrioritySlot:          PrioritySlot(slots),
		Status:                StatusPending,
	}
	created, err := s.repo.Insert(ctx, req)
	if err != nil {
		if errors.Is(err, ErrDuplicateRequest) {
			// The store's unique constraint caught a race the pre-check
			// missed.
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	// Succeeded
	s.invalidateViews(ctx, created.UserID, created.ListingIDs())
	s.logger.Info("tour request submitted",
		"tour_id", created.ID,
		"user_id", created.UserID,
		"listing_id", created.ListingID,
		"slots", len(created.TimeSlots),
	)
	return created, nil
}

func (s *Service) validate(sub *Submission, slots []TimeSlot) error {
	if len(slots) == 0 {
		return ErrNoSlotsSelected
	}
	if sub.ContactPhone == "" {
		return ErrMissingContact
	}
	if err := ValidatePhone(sub.ContactPhone, sub.CountryCode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidContact, err)
	}
	if !sub.ContactMethod.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidContactMethod, sub.ContactMethod)
	}

	dates := sub.Draft.SelectedDateStrings()
	if len(dates) == 0 || len(dates) > MaxSelectedDates {
		return ErrSelectionLimit
	}
	if len(slots) > MaxTimeSlots {
		return ErrSelectionLimit
	}

	today := s.today()
	latest := today.AddDate(0, 0, s.windowDays)
	selected := make(map[string]struct{}, len(dates))
	for _, date := range dates {
		day, err := time.Parse(DateLayout, date)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDate, date)
		}
		if !day.After(today) || day.After(latest) {
			return fmt.Errorf("%w: %s", ErrDateOutOfWindow, date)
		}
		selected[date] = struct{}{}
	}

	perDate := make(map[string]int, len(dates))
	for _, slot := range slots {
		if _, ok := selected[slot.Date]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownDate, slot.Date)
		}
		perDate[slot.Date]++
		if perDate[slot.Date] > MaxSlotsPerDate {
			return ErrSelectionLimit
		}
	}
	if !validPriorities(slots) {
		return fmt.Errorf("%w: priorities must be dense 1..N", ErrSelectionLimit)
	}
	return nil
}

func (s *Service) syncProfilePhone(ctx context.Context, userID, phone string) error {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProfileUpdate, err)
	}
	if profile.Phone == phone {
		return nil
	}
	if err := s.profiles.UpdatePhone(ctx, userID, phone); err != nil {
		return fmt.Errorf("%w: %w", ErrProfileUpdate, err)
	}
	s.logger.Info("contact phone updated", "user_id", userID)
	return nil
}

// today returns the current date with the time component dropped.
func (s *Service) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) invalidateViews(ctx context.Context, userID string, listingIDs []string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.logger.Warn("cache invalidation failed", "user_id", userID, "error", err)
	}
	if err := s.cache.InvalidateListings(ctx, listingIDs); err != nil {
		s.logger.Warn("cache invalidation failed", "listings", listingIDs, "error", err)
	}
	s.metrics.ObserveCacheInvalidation()
}

func submitOutcome(err error) string {
	switch {
	case err == nil:
		return "succeeded"
	case errors.Is(err, ErrDuplicateRequest):
		return "duplicate"
	case errors.Is(err, ErrSubmissionInFlight):
		return "in_flight"
	case errors.Is(err, ErrProfileUpdate):
		return "profile_update_failed"
	case errors.Is(err, ErrSubmissionFailed):
		return "failed"
	default:
		return "rejected"
	}
}

// ListForUser returns a user's tour requests, reading through the cache.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*TourRequest, error) {
	if s.cache != nil {
		if cached, ok, err := s.cache.GetUserTours(ctx, userID); err != nil {
			s.logger.Warn("cache read failed", "user_id", userID, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	requests, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("tours: list for user: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.SetUserTours(ctx, userID, requests); err != nil {
			s.logger.Warn("cache write failed", "user_id", userID, "error", err)
		}
	}
	return requests, nil
}

// ActiveForListing returns the newest active request touching a listing, or
// nil when the listing has none. Listing screens use it to show that a tour
// is already requested.
func (s *Service) ActiveForListing(ctx context.Context, listingID string) (*TourRequest, error) {
	if s.cache != nil {
		if cached, ok, err := s.cache.GetListingTour(ctx, listingID); err != nil {
			s.logger.Warn("cache read failed", "listing_id", listingID, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	active, err := s.repo.QueryActiveByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("tours: active for listing: %w", err)
	}
	if len(active) == 0 {
		return nil, nil
	}

	newest := active[0]
	if s.cache != nil {
		if err := s.cache.SetListingTour(ctx, listingID, newest); err != nil {
			s.logger.Warn("cache write failed", "listing_id", listingID, "error", err)
		}
	}
	return newest, nil
}

// CheckConflicts exposes the time-overlap pre-check for the UI.
func (s *Service) CheckConflicts(ctx context.Context, userID string, slots []TimeSlot, excludeID string) ([]TimeConflict, error) {
	conflicts, err := s.checker.FindTimeConflicts(ctx, userID, slots, excludeID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		s.metrics.ObserveConflictCheck("overlap")
	} else {
		s.metrics.ObserveConflictCheck("clear")
	}
	return conflicts, nil
}

// Summary loads a persisted request and projects it for confirmation
// display.
func (s *Service) Summary(ctx context.Context, tourID string) (*Summary, error) {
	req, err := s.repo.GetByID(ctx, tourID)
	if err != nil {
		return nil, err
	}
	summary := BuildSummary(req)
	return &summary, nil
}

// Cancel marks a user's own request cancelled and drops cached views.
func (s *Service) Cancel(ctx context.Context, userID, tourID string) (*TourRequest, error) {
	req, err := s.repo.GetByID(ctx, tourID)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, ErrNotRequester
	}
	if req.Status.Terminal() {
		return nil, ErrTourFinalized
	}

	updated, err := s.repo.UpdateStatus(ctx, tourID, StatusCancelled)
	if err != nil {
		return nil, err
	}
	s.invalidateViews(ctx, updated.UserID, updated.ListingIDs())
	s.logger.Info("tour request cancelled", "tour_id", tourID, "user_id", userID)
	return updated, nil
}

// UpdateStatus applies an agent-side status transition. Completed and
// cancelled requests accept no further transitions.
func (s *Service) UpdateStatus(ctx context.Context, tourID string, status Status) (*TourRequest, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	req, err := s.repo.GetByID(ctx, tourID)
	if err != nil {
		return nil, err
	}
	if req.Status.Terminal() {
		return nil, ErrTourFinalized
	}

	updated, err := s.repo.UpdateStatus(ctx, tourID, status)
	if err != nil {
		return nil, err
	}
	s.invalidateViews(ctx, updated.UserID, updated.ListingIDs())
	s.logger.Info("tour status updated", "tour_id", tourID, "status", status)
	return updated, nil
}
