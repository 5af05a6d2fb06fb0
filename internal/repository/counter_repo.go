package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// CounterRepository is the Postgres adapter for the rate limiter's counting
// store: an atomic increment with expiry semantics, one upsert per attempt.
type CounterRepository struct {
	DB *sqlx.DB
}

func NewCounterRepository(db *sqlx.DB) *CounterRepository {
	return &CounterRepository{DB: db}
}

// Increment bumps the attempt counter for identity and returns the
// post-increment count. An expired row is reset to a fresh window in the same
// statement, so two racing first attempts can never both start a window.
func (r *CounterRepository) Increment(ctx context.Context, identity string, window time.Duration) (int64, error) {
	query := `
		INSERT INTO rate_limit_counters (identity, window_start, expires_at, count)
		VALUES ($1, NOW(), NOW() + make_interval(secs => $2), 1)
		ON CONFLICT (identity) DO UPDATE SET
			count        = CASE WHEN rate_limit_counters.expires_at <= NOW() THEN 1
			                    ELSE rate_limit_counters.count + 1 END,
			window_start = CASE WHEN rate_limit_counters.expires_at <= NOW() THEN NOW()
			                    ELSE rate_limit_counters.window_start END,
			expires_at   = CASE WHEN rate_limit_counters.expires_at <= NOW() THEN NOW() + make_interval(secs => $2)
			                    ELSE rate_limit_counters.expires_at END
		RETURNING count`
	var count int64
	err := r.DB.QueryRowContext(ctx, query, identity, window.Seconds()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error incrementing rate limit counter: %w", err)
	}
	return count, nil
}

// DeleteExpired removes lapsed counter rows. Expiry is enforced by the upsert
// above; this is housekeeping so the table does not grow unbounded.
func (r *CounterRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM rate_limit_counters WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("error deleting expired rate limit counters: %w", err)
	}
	return result.RowsAffected()
}
