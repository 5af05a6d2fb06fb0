package entities

type AvailabilityResponse struct {
	Service        string   `json:"service"`
	Date           string   `json:"date"`
	AvailableSlots []string `json:"available_slots"`
}
