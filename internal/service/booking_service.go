package service

import (
	"context"
	"curevet/internal/booking"
	"curevet/internal/db"
	"curevet/internal/entities"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type ReservationStore interface {
	Insert(ctx context.Context, res *db.Reservation) error
	ListReservedStarts(ctx context.Context, serviceKey string, date time.Time) ([]booking.TimeOfDay, error)
	GetByCode(ctx context.Context, code, email string) (*db.Reservation, error)
	GetServiceByKey(ctx context.Context, key string) (*db.Service, error)
	ListServices(ctx context.Context) ([]db.Service, error)
}

type RateLimiter interface {
	CheckAndCount(ctx context.Context, identity string) bool
}

// Notifier delivers confirmations after a successful booking. Best effort:
// implementations must never block the booking outcome on delivery.
type Notifier interface {
	ReservationCreated(res entities.ReservationResponse)
}

// EventPublisher mirrors successful bookings onto an event stream. Optional.
type EventPublisher interface {
	ReservationCreated(ctx context.Context, res entities.ReservationResponse) error
}

type BookingService struct {
	repo     ReservationStore
	limiter  RateLimiter
	notifier Notifier
	events   EventPublisher
	schedule booking.WeekSchedule
	validate *validator.Validate
	now      func() time.Time
}

func NewBookingService(repo ReservationStore, limiter RateLimiter, notifier Notifier, events EventPublisher, schedule booking.WeekSchedule) *BookingService {
	return &BookingService{
		repo:     repo,
		limiter:  limiter,
		notifier: notifier,
		events:   events,
		schedule: schedule,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (s *BookingService) ListServices(ctx context.Context) ([]db.Service, error) {
	return s.repo.ListServices(ctx)
}

// Availability returns the free slot starts for a service on a date: the
// calendar grid minus the already reserved starts. The result is a snapshot;
// a listed slot can still be lost to a concurrent booking, which Reserve
// reports as a conflict.
func (s *BookingService) Availability(ctx context.Context, serviceKey string, date time.Time) (*entities.AvailabilityResponse, error) {
	if _, err := s.repo.GetServiceByKey(ctx, serviceKey); err != nil {
		return nil, err
	}

	resp := &entities.AvailabilityResponse{
		Service:        serviceKey,
		Date:           date.Format(dateLayout),
		AvailableSlots: []string{},
	}

	hours, open := s.schedule.HoursFor(date)
	if !open {
		return resp, nil
	}

	slots, err := booking.GenerateSlots(hours)
	if err != nil {
		return nil, err
	}

	reserved, err := s.repo.ListReservedStarts(ctx, serviceKey, date)
	if err != nil {
		log.Printf("Error listing reserved starts for %s on %s: %v", serviceKey, resp.Date, err)
		return nil, booking.ErrStoreUnavailable
	}
	taken := make(map[booking.TimeOfDay]bool, len(reserved))
	for _, start := range reserved {
		taken[start] = true
	}

	for _, slot := range slots {
		if !taken[slot] {
			resp.AvailableSlots = append(resp.AvailableSlots, slot.String())
		}
	}
	return resp, nil
}

// Reserve runs the booking state machine: rate check, validation, atomic
// insert, then fire-and-forget notification. Every terminal outcome maps to
// one error value; there are no automatic retries.
func (s *BookingService) Reserve(ctx context.Context, identity string, req *entities.ReservationRequest) (*entities.ReservationResponse, error) {
	if !s.limiter.CheckAndCount(ctx, identity) {
		return nil, booking.ErrThrottled
	}

	if err := s.validate.Struct(req); err != nil {
		return nil, asInvalidInput(err)
	}

	date, err := time.ParseInLocation(dateLayout, req.Date, time.UTC)
	if err != nil {
		return nil, &booking.InvalidInputError{Fields: map[string]string{"date": "must be formatted as YYYY-MM-DD"}}
	}
	start, err := booking.ParseTimeOfDay(req.Start)
	if err != nil {
		return nil, &booking.InvalidInputError{Fields: map[string]string{"start": "must be formatted as HH:MM"}}
	}

	if _, err := s.repo.GetServiceByKey(ctx, req.Service); err != nil {
		if errors.Is(err, booking.ErrUnknownService) {
			return nil, err
		}
		log.Printf("Error looking up service %s: %v", req.Service, err)
		return nil, booking.ErrStoreUnavailable
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	if date.Before(today) {
		return nil, booking.ErrInvalidDate
	}

	hours, open := s.schedule.HoursFor(date)
	if !open || !hours.ContainsSlot(start, req.DurationMinutes) {
		return nil, booking.ErrInvalidSlot
	}

	reservation := &db.Reservation{
		Code:            uuid.NewString(),
		ServiceKey:      req.Service,
		BookingDate:     date,
		StartMinutes:    int(start),
		DurationMinutes: req.DurationMinutes,
		UserName:        req.UserName,
		UserEmail:       req.UserEmail,
		UserPhone:       req.UserPhone,
	}

	if err := s.repo.Insert(ctx, reservation); err != nil {
		if errors.Is(err, booking.ErrSlotTaken) {
			return nil, booking.ErrSlotTaken
		}
		log.Printf("Error inserting reservation for %s %s %s: %v", req.Service, req.Date, req.Start, err)
		return nil, booking.ErrStoreUnavailable
	}

	resp := toResponse(reservation)

	// The reservation is committed; confirmation delivery must not undo it.
	if s.notifier != nil {
		s.notifier.ReservationCreated(resp)
	}
	if s.events != nil {
		go func(res entities.ReservationResponse) {
			if err := s.events.ReservationCreated(context.Background(), res); err != nil {
				log.Printf("ALERT: reservation %s created but event publish failed: %v", res.Code, err)
			}
		}(resp)
	}

	return &resp, nil
}

func (s *BookingService) GetReservation(ctx context.Context, code, email string) (*entities.ReservationResponse, error) {
	reservation, err := s.repo.GetByCode(ctx, code, email)
	if err != nil {
		return nil, err
	}
	resp := toResponse(reservation)
	return &resp, nil
}

func toResponse(res *db.Reservation) entities.ReservationResponse {
	return entities.ReservationResponse{
		ID:              res.ID,
		Code:            res.Code,
		Service:         res.ServiceKey,
		Date:            res.BookingDate.Format(dateLayout),
		Start:           booking.TimeOfDay(res.StartMinutes).String(),
		DurationMinutes: res.DurationMinutes,
		UserName:        res.UserName,
		UserEmail:       res.UserEmail,
		UserPhone:       res.UserPhone,
		CreatedAt:       res.CreatedAt,
	}
}

func asInvalidInput(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &booking.InvalidInputError{Fields: map[string]string{"request": err.Error()}}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[field] = "is required"
		case "email":
			fields[field] = "must be a valid email address"
		case "datetime":
			fields[field] = "must be formatted as YYYY-MM-DD"
		case "gt":
			fields[field] = "must be greater than " + fe.Param()
		default:
			fields[field] = fmt.Sprintf("failed %s validation", fe.Tag())
		}
	}
	return &booking.InvalidInputError{Fields: fields}
}
