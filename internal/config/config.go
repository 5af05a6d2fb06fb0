package config

import (
	"curevet/internal/booking"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL string
	Port        string
	JWTSecret   string

	Schedule    booking.WeekSchedule
	SlotMinutes int

	RateLimitMax    int64
	RateLimitWindow time.Duration

	SendGridAPIKey   string
	SendGridFrom     string
	SendGridFromName string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	KafkaBrokers []string
	KafkaTopic   string
}

// Load builds the configuration from the environment. Business hours and
// rate-limit thresholds become explicit values handed to their components;
// nothing reads the environment after startup.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		Port:             getEnv("PORT", "8080"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		SendGridAPIKey:   os.Getenv("SENDGRID_API_KEY"),
		SendGridFrom:     os.Getenv("SENDGRID_FROM_EMAIL"),
		SendGridFromName: getEnv("SENDGRID_FROM_NAME", "CureVet"),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "reservations.created"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	var err error
	if cfg.RateLimitMax, err = getEnvInt64("RATE_LIMIT_MAX", 5); err != nil {
		return nil, err
	}
	windowSeconds, err := getEnvInt64("RATE_LIMIT_WINDOW_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitWindow = time.Duration(windowSeconds) * time.Second

	if cfg.Schedule, cfg.SlotMinutes, err = loadSchedule(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadSchedule() (booking.WeekSchedule, int, error) {
	open, err := booking.ParseTimeOfDay(getEnv("OPEN_TIME", "09:00"))
	if err != nil {
		return nil, 0, fmt.Errorf("OPEN_TIME: %w", err)
	}
	closeAt, err := booking.ParseTimeOfDay(getEnv("CLOSE_TIME", "17:00"))
	if err != nil {
		return nil, 0, fmt.Errorf("CLOSE_TIME: %w", err)
	}
	slotMinutes, err := getEnvInt64("SLOT_MINUTES", 60)
	if err != nil {
		return nil, 0, err
	}

	hours := booking.BusinessHours{Open: open, Close: closeAt, SlotMinutes: int(slotMinutes)}
	if _, err := booking.GenerateSlots(hours); err != nil {
		return nil, 0, fmt.Errorf("business hours: %w", err)
	}

	closed := map[time.Weekday]bool{}
	for _, name := range strings.Split(getEnv("CLOSED_WEEKDAYS", "Sunday"), ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		day, err := parseWeekday(name)
		if err != nil {
			return nil, 0, fmt.Errorf("CLOSED_WEEKDAYS: %w", err)
		}
		closed[day] = true
	}

	schedule := booking.WeekSchedule{}
	for day := time.Sunday; day <= time.Saturday; day++ {
		if !closed[day] {
			schedule[day] = hours
		}
	}
	return schedule, int(slotMinutes), nil
}

func parseWeekday(name string) (time.Weekday, error) {
	for day := time.Sunday; day <= time.Saturday; day++ {
		if strings.EqualFold(day.String(), name) {
			return day, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: expected integer, got %q", key, v)
	}
	return n, nil
}
