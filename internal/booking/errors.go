package booking

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Every terminal outcome of a booking attempt maps to one of these values.
// They are returned to callers as expected results, not wrapped as failures;
// only ErrStoreUnavailable indicates a fault in the booking path itself.
var (
	ErrInvalidSlot      = errors.New("slot is outside business hours or off the slot grid")
	ErrInvalidDate      = errors.New("booking date is in the past")
	ErrSlotTaken        = errors.New("slot already booked")
	ErrThrottled        = errors.New("too many booking attempts")
	ErrUnknownService   = errors.New("unknown service")
	ErrStoreUnavailable = errors.New("reservation store unavailable")
)

// InvalidInputError carries field-level validation reasons for a rejected request.
type InvalidInputError struct {
	Fields map[string]string
}

func (e *InvalidInputError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}
