package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/krili-app/krili/internal/adapters/nats"
	"github.com/krili-app/krili/internal/adapters/postgres"
	"github.com/krili-app/krili/internal/core/domain"
	"github.com/krili-app/krili/internal/core/usecases"
	"github.com/krili-app/krili/internal/pkg/config"
	"github.com/krili-app/krili/internal/pkg/logging"
)

// The notifier drains notification events off the broker and persists them,
// so the in-app notification list survives WebSocket disconnects.
func main() {
	cfg, err := config.Load("krili-notifier")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.FromEnv("krili-notifier")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	notifications := usecases.NewNotificationService(postgres.NewNotificationRepo(db))

	err = sub.SubscribeNotifications(ctx, func(ctx context.Context, n *domain.Notification) error {
		if err := notifications.Store(ctx, n); err != nil {
			slog.Error("store notification", "user_id", n.UserID, "error", err)
			return err
		}
		slog.Debug("notification stored", "user_id", n.UserID, "type", n.Type)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("notifier worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("notifier stopping")
}
