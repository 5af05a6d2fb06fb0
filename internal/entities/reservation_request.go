package entities

type ReservationRequest struct {
	Service         string `json:"service" validate:"required"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	Start           string `json:"start" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0"`
	UserName        string `json:"name" validate:"required"`
	UserEmail       string `json:"email" validate:"required,email"`
	UserPhone       string `json:"phone" validate:"omitempty,min=6,max=20"`
}
