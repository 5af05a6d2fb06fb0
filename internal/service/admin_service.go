package service

import (
	"context"
	"curevet/internal/entities"
	"curevet/internal/repository"
)

type AdminService struct {
	Repo *repository.ReservationRepository
}

func NewAdminService(repo *repository.ReservationRepository) *AdminService {
	return &AdminService{Repo: repo}
}

func (s *AdminService) ListReservations(ctx context.Context, date, serviceKey string) ([]entities.ReservationResponse, error) {
	rows, err := s.Repo.ListReservations(ctx, date, serviceKey)
	if err != nil {
		return nil, err
	}
	reservations := make([]entities.ReservationResponse, 0, len(rows))
	for i := range rows {
		reservations = append(reservations, toResponse(&rows[i]))
	}
	return reservations, nil
}

func (s *AdminService) DeleteReservation(ctx context.Context, id int64) error {
	return s.Repo.DeleteByID(ctx, id)
}
