package main

import (
	"log"
	"net/http"
	"os"

	"curevet/internal/api"
	"curevet/internal/auth"
	"curevet/internal/config"
	"curevet/internal/events"
	"curevet/internal/ratelimit"
	"curevet/internal/repository"
	"curevet/internal/service"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
)

func main() {
	godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	reservationRepo := repository.NewReservationRepository(db)
	counterRepo := repository.NewCounterRepository(db)
	adminAuthRepo := repository.NewAdminAuthRepository(db)

	limiter := ratelimit.NewFixedWindowLimiter(counterRepo, cfg.RateLimitMax, cfg.RateLimitWindow)
	notifier := service.NewNotifyService(service.NotifyConfig{
		SendGridAPIKey:   cfg.SendGridAPIKey,
		FromEmail:        cfg.SendGridFrom,
		FromName:         cfg.SendGridFromName,
		TwilioAccountSID: cfg.TwilioAccountSID,
		TwilioAuthToken:  cfg.TwilioAuthToken,
		TwilioFromNumber: cfg.TwilioFromNumber,
	})

	var publisher service.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Printf("Publishing reservation events to %s", cfg.KafkaTopic)
	}

	bookingSvc := service.NewBookingService(reservationRepo, limiter, notifier, publisher, cfg.Schedule)
	adminSvc := service.NewAdminService(reservationRepo)
	adminAuthSvc := service.NewAdminAuthService(adminAuthRepo, cfg.JWTSecret)
	jobSvc := service.NewJobService(counterRepo)

	bookingHandler := api.NewBookingHandler(bookingSvc)
	adminHandler := api.NewAdminHandler(adminSvc)
	adminAuthHandler := api.NewAdminAuthHandler(adminAuthSvc)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/services", bookingHandler.ListServices).Methods("GET")
	r.HandleFunc("/api/availability", bookingHandler.GetAvailability).Methods("GET")
	r.HandleFunc("/api/reservations", bookingHandler.CreateReservation).Methods("POST")
	r.HandleFunc("/api/reservations/{code}", bookingHandler.GetReservation).Methods("GET")

	// Admin endpoints (protected)
	r.HandleFunc("/admin/login", adminAuthHandler.Login).Methods("POST")
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware(cfg.JWTSecret))
	admin.HandleFunc("/users", adminAuthHandler.CreateAdminUser).Methods("POST")
	admin.HandleFunc("/reservations", adminHandler.ListReservations).Methods("GET")
	admin.HandleFunc("/reservations/{id}", adminHandler.DeleteReservation).Methods("DELETE")

	c := cron.New()
	if _, err := c.AddFunc("@hourly", func() {
		if err := jobSvc.PurgeExpiredCounters(); err != nil {
			log.Printf("Cron Job error: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule counter purge job: %v", err)
	}
	c.Start()
	defer c.Stop()

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	log.Printf("Server running on port %s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handlers.LoggingHandler(os.Stdout, cors(r))))
}
