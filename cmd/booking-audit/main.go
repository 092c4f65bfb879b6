package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"parkbook/internal/bookingevents"
	"parkbook/pkg/config"
	"parkbook/pkg/kafka"
	kafka_config "parkbook/pkg/kafka/config"
	kafka_middleware "parkbook/pkg/kafka/middleware"
	"syscall"
)

const ServiceName = "booking-audit"

// booking-audit consumes booking lifecycle events and writes them to the
// structured log. Records it cannot decode are parked in the DLQ topic.
func main() {
	cfg := config.Load(ServiceName)
	if cfg.KafkaBookingsTopic == "" {
		cfg.Log.Fatal("Invalid configuration", "error", "KafkaBookingsTopic cannot be empty")
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.KafkaBookingsTopic,
		cfg.KafkaAuditGroupID,
		cfg.KafkaBookingsDLQ,
		bookingevents.AuditHandler(cfg.Log),
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	metrics := kafka_middleware.NewMetrics()
	consumer.Use(metrics.ConsumerMiddleware())
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting booking audit consumer",
		"brokers", kafkaCfg.Brokers,
		"topic", cfg.KafkaBookingsTopic,
		"group_id", cfg.KafkaAuditGroupID,
	)

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", err)
	}
	cfg.Log.Info("Booking audit consumer stopped", metrics.Snapshot().LogAttrs()...)
}
