package api

import "curevet/internal/entities"

type ServiceResponse struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type ReservedResponse struct {
	Reserved *entities.ReservationResponse `json:"reserved"`
}

type ConflictResponse struct {
	Conflict string `json:"conflict"`
}

type ThrottledResponse struct {
	Throttled string `json:"throttled"`
}

type InvalidResponse struct {
	Invalid map[string]string `json:"invalid"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
