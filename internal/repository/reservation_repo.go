package repository

import (
	"context"
	"curevet/internal/booking"
	"curevet/internal/db"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = pq.ErrorCode("23505")

type ReservationRepository struct {
	DB *sqlx.DB
}

func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{DB: db}
}

// Insert writes the reservation if and only if its (service, date, start) slot
// is still free. The uniqueness constraint on the reservations table makes the
// check and the insert a single atomic step; losing the race surfaces as
// booking.ErrSlotTaken, never as a partial row.
func (r *ReservationRepository) Insert(ctx context.Context, res *db.Reservation) error {
	query := `
		INSERT INTO reservations
		(code, service_key, booking_date, start_minutes, duration_minutes, user_name, user_email, user_phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at`
	err := r.DB.QueryRowContext(ctx, query,
		res.Code,
		res.ServiceKey,
		res.BookingDate,
		res.StartMinutes,
		res.DurationMinutes,
		res.UserName,
		res.UserEmail,
		res.UserPhone,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return booking.ErrSlotTaken
		}
		return fmt.Errorf("error inserting reservation: %w", err)
	}
	return nil
}

// ListReservedStarts returns the already booked start times for a service on a
// date. This is a point-in-time read for rendering availability; the insert
// constraint, not this query, is what prevents double booking.
func (r *ReservationRepository) ListReservedStarts(ctx context.Context, serviceKey string, date time.Time) ([]booking.TimeOfDay, error) {
	var minutes []int
	query := `
		SELECT start_minutes FROM reservations
		WHERE service_key = $1 AND booking_date = $2
		ORDER BY start_minutes`
	if err := r.DB.SelectContext(ctx, &minutes, query, serviceKey, date); err != nil {
		return nil, fmt.Errorf("error querying reserved starts: %w", err)
	}
	starts := make([]booking.TimeOfDay, 0, len(minutes))
	for _, m := range minutes {
		starts = append(starts, booking.TimeOfDay(m))
	}
	return starts, nil
}

func (r *ReservationRepository) GetByCode(ctx context.Context, code, email string) (*db.Reservation, error) {
	var res db.Reservation
	query := `
		SELECT id, code, service_key, booking_date, start_minutes, duration_minutes,
		       user_name, user_email, user_phone, created_at
		FROM reservations
		WHERE code = $1 AND user_email = $2`
	err := r.DB.GetContext(ctx, &res, query, code, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reservation with code '%s' not found: %w", code, err)
		}
		return nil, fmt.Errorf("error querying reservation: %w", err)
	}
	return &res, nil
}

func (r *ReservationRepository) GetServiceByKey(ctx context.Context, key string) (*db.Service, error) {
	var svc db.Service
	err := r.DB.GetContext(ctx, &svc, `SELECT id, key, name FROM services WHERE key = $1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrUnknownService
		}
		return nil, fmt.Errorf("error querying service: %w", err)
	}
	return &svc, nil
}

func (r *ReservationRepository) ListServices(ctx context.Context) ([]db.Service, error) {
	var services []db.Service
	err := r.DB.SelectContext(ctx, &services, `SELECT id, key, name FROM services ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error querying services: %w", err)
	}
	return services, nil
}

// ListReservations is the admin listing; filters are optional.
func (r *ReservationRepository) ListReservations(ctx context.Context, date, serviceKey string) ([]db.Reservation, error) {
	query := `
		SELECT id, code, service_key, booking_date, start_minutes, duration_minutes,
		       user_name, user_email, user_phone, created_at
		FROM reservations
		WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if date != "" {
		query += " AND booking_date = $" + strconv.Itoa(idx)
		args = append(args, date)
		idx++
	}
	if serviceKey != "" {
		query += " AND service_key = $" + strconv.Itoa(idx)
		args = append(args, serviceKey)
		idx++
	}
	query += " ORDER BY booking_date DESC, start_minutes"

	var reservations []db.Reservation
	if err := r.DB.SelectContext(ctx, &reservations, query, args...); err != nil {
		return nil, fmt.Errorf("error listing reservations: %w", err)
	}
	return reservations, nil
}

// DeleteByID is the administrative removal path; regular callers can never
// delete a committed reservation.
func (r *ReservationRepository) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting reservation %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
