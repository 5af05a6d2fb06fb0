package entities

import "time"

type ReservationResponse struct {
	ID              int64     `json:"id"`
	Code            string    `json:"code"`
	Service         string    `json:"service"`
	Date            string    `json:"date"`
	Start           string    `json:"start"`
	DurationMinutes int       `json:"duration_minutes"`
	UserName        string    `json:"name"`
	UserEmail       string    `json:"email"`
	UserPhone       string    `json:"phone,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
