package errors

import (
	"curevet/internal/booking"
	"errors"
	"net/http"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// FromBooking maps a booking outcome onto its transport representation. Only
// the store-unavailable case is a genuine server fault; the rest are expected
// results of the booking state machine.
func FromBooking(err error) *HTTPError {
	switch {
	case errors.Is(err, booking.ErrThrottled):
		return NewHTTPError(http.StatusTooManyRequests, "Too many booking attempts. Please wait a minute and try again.")
	case errors.Is(err, booking.ErrSlotTaken):
		return NewHTTPError(http.StatusConflict, "This slot has just been booked. Please pick another time.")
	case errors.Is(err, booking.ErrInvalidSlot):
		return NewHTTPError(http.StatusUnprocessableEntity, "The requested time is outside business hours or not a bookable slot.")
	case errors.Is(err, booking.ErrInvalidDate):
		return NewHTTPError(http.StatusUnprocessableEntity, "The requested date is in the past.")
	case errors.Is(err, booking.ErrUnknownService):
		return NewHTTPError(http.StatusNotFound, "Unknown service.")
	case errors.Is(err, booking.ErrStoreUnavailable):
		return NewHTTPError(http.StatusServiceUnavailable, "Booking is temporarily unavailable. Please try again later.")
	default:
		return NewHTTPError(http.StatusInternalServerError, "Internal server error.")
	}
}
