package main

import (
	"context"
	"log"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/krili-app/krili/internal/adapters/nats"
	"github.com/krili-app/krili/internal/adapters/postgres"
	"github.com/krili-app/krili/internal/core/ports"
	"github.com/krili-app/krili/internal/core/usecases"
	"github.com/krili-app/krili/internal/pkg/config"
	"github.com/krili-app/krili/internal/pkg/logging"
	"github.com/krili-app/krili/internal/workflows"
)

func main() {
	cfg, err := config.Load("krili-bookings")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.FromEnv("krili-bookings")

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var events ports.EventPublisher
	if publisher, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		log.Printf("nats unavailable, notifications will be stored directly: %v", err)
	} else {
		defer publisher.Close()
		events = publisher
	}

	reservationRepo := postgres.NewReservationRepo(db)
	listingRepo := postgres.NewListingRepo(db)
	notificationRepo := postgres.NewNotificationRepo(db)

	// Connect to Temporal
	hostPort := os.Getenv("TEMPORAL_ADDR")
	if hostPort == "" {
		hostPort = "localhost:7233"
	}
	c, err := client.Dial(client.Options{
		HostPort: hostPort,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, "booking-queue", worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.BookingWorkflow)
	w.RegisterActivity(&workflows.BookingActivities{
		Reservations:  usecases.NewReservationService(reservationRepo, listingRepo, events),
		Notifications: usecases.NewNotificationService(notificationRepo),
		Repo:          reservationRepo,
		Events:        events,
	})

	log.Println("bookings worker started")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
