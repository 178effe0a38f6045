package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/config"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/email"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/kafka"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/logger"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.New(logger.Config{}).Fatal("load config", "error", err)
	}

	log := logger.New(logger.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
		Service:   cfg.App.Name + "-worker",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sender, err := newSender(cfg.Email)
	if err != nil {
		log.Fatal("configure email sender", "error", err)
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	dispatcher := email.NewDispatcher(sender, log.With("component", "email"))
	log.Info("email worker started", "topic", cfg.Kafka.NotificationsTopic, "provider", cfg.Email.Provider)

	if err := consumer.Consume(ctx, dispatcher.Handle); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("consumer stopped", "error", err)
	}
	log.Info("email worker stopped")
}

func newSender(cfg config.EmailConfig) (email.Sender, error) {
	if cfg.Provider == config.EmailProviderSendGrid {
		sg, err := email.NewSendGridSender(cfg.SendGridAPIKey, cfg.FromEmail, cfg.FromName)
		if err != nil {
			return nil, err
		}
		return sg, nil
	}
	return email.NewHostedClient(cfg.Endpoint, cfg.APIKey, time.Duration(cfg.TimeoutSeconds)*time.Second), nil
}
