package tours

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openhaus/tour-scheduler/pkg/logging"
)

// Handler handles HTTP requests for tour scheduling. The requesting user is
// identified by the X-User-ID header set upstream by the auth gateway.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new tours handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type datePayload struct {
	Date   string `json:"date"`
	Period string `json:"period,omitempty"`
}

type slotPayload struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// submitTourPayload is the draft as the app sends it: dates with their
// periods, and slots listed in priority order (first = rank 1).
type submitTourPayload struct {
	AdditionalListingIDs []string      `json:"additional_listing_ids,omitempty"`
	Dates                []datePayload `json:"dates"`
	Slots                []slotPayload `json:"slots"`
	ContactPhone         string        `json:"contact_phone"`
	CountryCode          string        `json:"country_code,omitempty"`
	ContactMethod        string        `json:"contact_method,omitempty"`
	Notes                string        `json:"notes,omitempty"`
}

// draftFromPayload rebuilds the draft by replaying reducer actions, so every
// selection invariant is enforced before the pipeline runs.
func draftFromPayload(p *submitTourPayload) (Draft, error) {
	d := NewDraft()
	var err error
	for _, dp := range p.Dates {
		if d, err = Reduce(d, ToggleDate{Date: dp.Date}); err != nil {
			return Draft{}, err
		}
		if dp.Period != "" {
			if d, err = Reduce(d, SetPeriod{Date: dp.Date, Period: Period(dp.Period)}); err != nil {
				return Draft{}, err
			}
		}
	}
	for _, sp := range p.Slots {
		if d, err = Reduce(d, ToggleSlot{Date: sp.Date, Time: sp.Time}); err != nil {
			return Draft{}, err
		}
	}
	return d, nil
}

// SubmitTour handles POST /listings/{listingID}/tours requests
func (h *Handler) SubmitTour(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	listingID := chi.URLParam(r, "listingID")
	if listingID == "" {
		writeError(w, http.StatusBadRequest, "missing listing id")
		return
	}

	var payload submitTourPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, err := draftFromPayload(&payload)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	created, err := h.service.Submit(r.Context(), Submission{
		UserID:               userID,
		ListingID:            listingID,
		AdditionalListingIDs: payload.AdditionalListingIDs,
		Draft:                draft,
		ContactPhone:         payload.ContactPhone,
		CountryCode:          payload.CountryCode,
		ContactMethod:        ContactMethod(payload.ContactMethod),
		Notes:                payload.Notes,
	})
	if err != nil {
		h.logger.Error("tour submission rejected", "user_id", userID, "listing_id", listingID, "error", err)
		var dup *DuplicateRequestError
		if errors.As(err, &dup) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":               err.Error(),
				"existing_request_id": dup.ExistingID,
				"existing_created_at": dup.ExistingCreatedAt,
			})
			return
		}
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// ListUserTours handles GET /users/{userID}/tours requests
func (h *Handler) ListUserTours(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user id")
		return
	}

	requests, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list tours", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tours")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tours": requests,
		"count": len(requests),
	})
}

// ActiveListingTour handles GET /listings/{listingID}/tours/active requests
func (h *Handler) ActiveListingTour(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")
	if listingID == "" {
		writeError(w, http.StatusBadRequest, "missing listing id")
		return
	}

	req, err := h.service.ActiveForListing(r.Context(), listingID)
	if err != nil {
		h.logger.Error("failed to load active tour", "listing_id", listingID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load active tour")
		return
	}
	if req == nil {
		writeError(w, http.StatusNotFound, "no active tour request for listing")
		return
	}

	writeJSON(w, http.StatusOK, req)
}

type conflictCheckPayload struct {
	Slots            []TimeSlot `json:"slots"`
	ExcludeRequestID string     `json:"exclude_request_id,omitempty"`
}

// CheckConflicts handles POST /users/{userID}/tours/conflicts requests; the
// app calls it while the user picks slots to flag overlaps inline.
func (h *Handler) CheckConflicts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user id")
		return
	}

	var payload conflictCheckPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conflicts, err := h.service.CheckConflicts(r.Context(), userID, payload.Slots, payload.ExcludeRequestID)
	if err != nil {
		h.logger.Error("conflict check failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "conflict check failed")
		return
	}
	if conflicts == nil {
		conflicts = []TimeConflict{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"conflicts": conflicts})
}

// TourSummary handles GET /tours/{tourID}/summary requests
func (h *Handler) TourSummary(w http.ResponseWriter, r *http.Request) {
	tourID := chi.URLParam(r, "tourID")

	summary, err := h.service.Summary(r.Context(), tourID)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// CancelTour handles DELETE /tours/{tourID} requests
func (h *Handler) CancelTour(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	tourID := chi.URLParam(r, "tourID")

	cancelled, err := h.service.Cancel(r.Context(), userID, tourID)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, cancelled)
}

type updateStatusPayload struct {
	Status string `json:"status"`
}

// UpdateTourStatus handles PATCH /tours/{tourID}/status requests (agent
// side: confirm, mark contacted, complete).
func (h *Handler) UpdateTourStatus(w http.ResponseWriter, r *http.Request) {
	tourID := chi.URLParam(r, "tourID")

	var payload updateStatusPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), tourID, Status(payload.Status))
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// HealthCheck handles GET /health requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrTourNotFound) || errors.Is(err, ErrListingUnavailable):
		return http.StatusNotFound
	case errors.Is(err, ErrNotRequester):
		return http.StatusForbidden
	case errors.Is(err, ErrDuplicateRequest) ||
		errors.Is(err, ErrSubmissionInFlight) ||
		errors.Is(err, ErrTourFinalized):
		return http.StatusConflict
	case errors.Is(err, ErrSelectionLimit) ||
		errors.Is(err, ErrNoSlotsSelected) ||
		errors.Is(err, ErrMissingContact) ||
		errors.Is(err, ErrInvalidContact) ||
		errors.Is(err, ErrInvalidContactMethod) ||
		errors.Is(err, ErrDateOutOfWindow) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrUnknownDate) ||
		errors.Is(err, ErrSlotNotOffered) ||
		errors.Is(err, ErrInvalidSlotIndex) ||
		errors.Is(err, ErrInvalidStatus):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
