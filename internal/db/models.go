package db

import "time"

type Service struct {
	ID   int    `db:"id"`
	Key  string `db:"key"`
	Name string `db:"name"`
}

type Reservation struct {
	ID              int64     `db:"id"`
	Code            string    `db:"code"`
	ServiceKey      string    `db:"service_key"`
	BookingDate     time.Time `db:"booking_date"`
	StartMinutes    int       `db:"start_minutes"`
	DurationMinutes int       `db:"duration_minutes"`
	UserName        string    `db:"user_name"`
	UserEmail       string    `db:"user_email"`
	UserPhone       string    `db:"user_phone"`
	CreatedAt       time.Time `db:"created_at"`
}

type RateLimitCounter struct {
	Identity    string    `db:"identity"`
	WindowStart time.Time `db:"window_start"`
	ExpiresAt   time.Time `db:"expires_at"`
	Count       int64     `db:"count"`
}
