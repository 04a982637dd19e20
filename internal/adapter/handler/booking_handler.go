package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/adpoint/ad-scheduler/internal/core/domain"
	"github.com/adpoint/ad-scheduler/internal/core/ports"
	"github.com/adpoint/ad-scheduler/internal/core/services"
)

// BookingHandler exposes the reservation and playlist surfaces as thin JSON
// endpoints. All business decisions live in the services; this layer only
// decodes requests and maps typed errors onto status codes.
type BookingHandler struct {
	availability *services.AvailabilityService
	playlists    ports.PlaylistRepository
	tz           *time.Location
}

func NewBookingHandler(availability *services.AvailabilityService, playlists ports.PlaylistRepository, tz *time.Location) *BookingHandler {
	return &BookingHandler{availability: availability, playlists: playlists, tz: tz}
}

// CreateBooking handles POST /bookings.
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req services.CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	resp, err := h.availability.CreateReservation(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(resp)
}

// GetAvailability handles GET /availability?location_id=&start_date=&end_date=&duration=.
func (h *BookingHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()

	locationID, err := uuid.Parse(q.Get("location_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid location_id")
		return
	}

	start, err := time.ParseInLocation("2006-01-02", q.Get("start_date"), h.tz)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date")
		return
	}

	end, err := time.ParseInLocation("2006-01-02", q.Get("end_date"), h.tz)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date")
		return
	}

	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date is before start_date")
		return
	}

	duration, err := strconv.Atoi(q.Get("duration"))
	if err != nil || duration <= 0 {
		writeError(w, http.StatusBadRequest, "invalid duration")
		return
	}

	result, err := h.availability.CheckAvailability(r.Context(), locationID, start, end, duration)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	_ = json.NewEncoder(w).Encode(result)
}

// ConfirmBooking handles POST /bookings/confirm, the payment success
// callback.
func (h *BookingHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		ReservationID string `json:"reservation_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	id, err := uuid.Parse(req.ReservationID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reservation_id")
		return
	}

	if err := h.availability.ConfirmReservation(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]string{"status": string(domain.ReservationConfirmed)})
}

// ListBookings handles GET /bookings with enumerated filter parameters.
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	var filter ports.ReservationFilter

	if v := q.Get("location_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid location_id")
			return
		}
		filter.LocationID = &id
	}
	if v := q.Get("status"); v != "" {
		status := domain.ReservationStatus(v)
		filter.Status = &status
	}
	if v := q.Get("sort"); v != "" {
		filter.SortField = ports.ReservationSortField(v)
	}
	if v := q.Get("dir"); v != "" {
		filter.SortDir = ports.SortDirection(v)
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil {
		filter.Page = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = n
	}

	reservations, err := h.availability.ListReservations(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	_ = json.NewEncoder(w).Encode(reservations)
}

// GetPlaylists handles GET /playlists?location_id=&date=, the device-facing
// lookup of a day's composed slots.
func (h *BookingHandler) GetPlaylists(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()

	locationID, err := uuid.Parse(q.Get("location_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid location_id")
		return
	}

	day := time.Now().In(h.tz)
	if v := q.Get("date"); v != "" {
		day, err = time.ParseInLocation("2006-01-02", v, h.tz)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date")
			return
		}
	}

	playlists, err := h.playlists.PlaylistsForDay(r.Context(), locationID, services.DayStart(day, h.tz))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if len(playlists) == 0 {
		writeError(w, http.StatusNotFound, "no playlists for this date")
		return
	}

	_ = json.NewEncoder(w).Encode(playlists)
}

func (h *BookingHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeServiceError(w http.ResponseWriter, err error) {
	var capErr *domain.CapacityExceededError
	switch {
	case errors.As(err, &capErr):
		writeError(w, http.StatusConflict, capErr.Error())
	case errors.Is(err, domain.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "location is busy, retry shortly")
	case errors.Is(err, domain.ErrAdNotFound),
		errors.Is(err, domain.ErrLocationNotFound),
		errors.Is(err, domain.ErrReservationNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrLocationInactive):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrNoAvailableAds):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
