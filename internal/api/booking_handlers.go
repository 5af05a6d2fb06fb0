package api

import (
	"context"
	"crypto/sha1"
	"curevet/internal/booking"
	"curevet/internal/db"
	"curevet/internal/entities"
	apperrors "curevet/internal/errors"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

const dateLayout = "2006-01-02"

type BookingAPI interface {
	ListServices(ctx context.Context) ([]db.Service, error)
	Availability(ctx context.Context, serviceKey string, date time.Time) (*entities.AvailabilityResponse, error)
	Reserve(ctx context.Context, identity string, req *entities.ReservationRequest) (*entities.ReservationResponse, error)
	GetReservation(ctx context.Context, code, email string) (*entities.ReservationResponse, error)
}

type BookingHandler struct {
	Service BookingAPI
}

func NewBookingHandler(svc BookingAPI) *BookingHandler {
	return &BookingHandler{Service: svc}
}

func (h *BookingHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.Service.ListServices(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Could not list services"})
		return
	}
	resp := make([]ServiceResponse, 0, len(services))
	for _, svc := range services {
		resp = append(resp, ServiceResponse{Key: svc.Key, Name: svc.Name})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	serviceKey := r.URL.Query().Get("service")
	dateStr := r.URL.Query().Get("date")
	if serviceKey == "" || dateStr == "" {
		writeJSON(w, http.StatusBadRequest, InvalidResponse{Invalid: map[string]string{
			"query": "service and date parameters are required",
		}})
		return
	}
	date, err := time.ParseInLocation(dateLayout, dateStr, time.UTC)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, InvalidResponse{Invalid: map[string]string{
			"date": "must be formatted as YYYY-MM-DD",
		}})
		return
	}

	availability, err := h.Service.Availability(r.Context(), serviceKey, date)
	if err != nil {
		httpErr := apperrors.FromBooking(err)
		writeJSON(w, httpErr.Code, ErrorResponse{Error: httpErr.Message})
		return
	}
	writeJSON(w, http.StatusOK, availability)
}

func (h *BookingHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req entities.ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, InvalidResponse{Invalid: map[string]string{
			"body": "invalid JSON request body",
		}})
		return
	}

	res, err := h.Service.Reserve(r.Context(), clientIdentity(r), &req)
	if err != nil {
		var invalid *booking.InvalidInputError
		if errors.As(err, &invalid) {
			writeJSON(w, http.StatusBadRequest, InvalidResponse{Invalid: invalid.Fields})
			return
		}
		httpErr := apperrors.FromBooking(err)
		switch {
		case errors.Is(err, booking.ErrSlotTaken):
			writeJSON(w, httpErr.Code, ConflictResponse{Conflict: httpErr.Message})
		case errors.Is(err, booking.ErrThrottled):
			writeJSON(w, httpErr.Code, ThrottledResponse{Throttled: httpErr.Message})
		case errors.Is(err, booking.ErrInvalidSlot):
			writeJSON(w, httpErr.Code, InvalidResponse{Invalid: map[string]string{"start": httpErr.Message}})
		case errors.Is(err, booking.ErrInvalidDate):
			writeJSON(w, httpErr.Code, InvalidResponse{Invalid: map[string]string{"date": httpErr.Message}})
		default:
			writeJSON(w, httpErr.Code, ErrorResponse{Error: httpErr.Message})
		}
		return
	}

	writeJSON(w, http.StatusCreated, ReservedResponse{Reserved: res})
}

func (h *BookingHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	email := r.URL.Query().Get("email")
	if email == "" {
		writeJSON(w, http.StatusBadRequest, InvalidResponse{Invalid: map[string]string{
			"email": "query parameter is required",
		}})
		return
	}
	res, err := h.Service.GetReservation(r.Context(), code, email)
	if err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Reservation not found"})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// clientIdentity derives the rate-limit identity from the caller's network
// address, hashed so raw addresses are not persisted in the counter store.
func clientIdentity(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if ip != "" {
		ip = strings.TrimSpace(strings.Split(ip, ",")[0])
	} else {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ip = host
	}
	sum := sha1.Sum([]byte(ip))
	return hex.EncodeToString(sum[:])
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
