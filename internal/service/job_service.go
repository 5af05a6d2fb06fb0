package service

import (
	"context"
	"curevet/internal/repository"
	"fmt"
	"log"
)

type JobService struct {
	Counters *repository.CounterRepository
}

func NewJobService(counters *repository.CounterRepository) *JobService {
	return &JobService{Counters: counters}
}

// PurgeExpiredCounters drops rate-limit counter rows whose window has lapsed.
// Correctness does not depend on it running; the counter upsert already treats
// expired rows as fresh windows.
func (s *JobService) PurgeExpiredCounters() error {
	deleted, err := s.Counters.DeleteExpired(context.Background())
	if err != nil {
		return fmt.Errorf("cron job: failed to purge expired rate limit counters: %w", err)
	}
	if deleted > 0 {
		log.Printf("Cron Job: purged %d expired rate limit counters", deleted)
	}
	return nil
}
