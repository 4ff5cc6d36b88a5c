package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ivancurkovic15/personal-trainer-booking/internal/config"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/database"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/handler"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/middleware"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/notify"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/queue"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/repository"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/router"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/scheduler"
	queuepublisher "github.com/ivancurkovic15/personal-trainer-booking/internal/service"
)

func main() {
	// Missing .env is fine in containers where the environment is injected.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	sessions := repository.NewSessionRepo(db)
	bookings := repository.NewBookingRepo(db)

	notifier := queuepublisher.NewPublisher()

	// Delivery runs out of process flow: the consumer drains the queue and
	// hands rendered mail to the sender. Without an API key every email is
	// logged instead of sent, which keeps dev environments quiet.
	var sender notify.Sender
	if cfg.ResendAPIKey != "" {
		sender = notify.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
	} else {
		log.Println("RESEND_API_KEY not set, using noop email sender")
		sender = notify.NewNoopSender()
	}
	go func() {
		if err := queue.StartNotificationConsumer(sender, cfg.NotifyTimeout); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	reminder := scheduler.NewReminder(bookings, notifier, cfg.ReminderInterval, cfg.NotifyTimeout)
	go reminder.Run(context.Background())

	rdb := config.NewRedisClient()
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Handlers{
		Auth:         handler.NewAuthHandler(users, tokens, cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays, cfg.BcryptCost),
		Booking:      handler.NewBookingHandler(sessions, bookings, users, notifier, cfg.AdminEmail, cfg.PackageDays, cfg.NotifyTimeout),
		AdminSession: handler.NewAdminSessionHandler(sessions, bookings, notifier, cfg.SessionPriceCents, cfg.PackagePriceCents, cfg.PackageDays, cfg.NotifyTimeout),
		AdminPackage: handler.NewAdminPackageHandler(users, notifier, cfg.PackageSessions, cfg.PackageDays, cfg.NotifyTimeout),
		Reminder:     handler.NewAdminReminderHandler(reminder),
	}, cfg.JWTSecret, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
