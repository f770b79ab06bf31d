package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"storefront-service/config"
	"storefront-service/internal/consumer"
	"storefront-service/internal/notify"

	"github.com/Anabol1ks/orderhub-pkg-proto/pkg/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.LoadWorker(log)

	tg, err := notify.NewTelegramTransport(cfg.Notify.TelegramToken)
	if err != nil {
		log.Fatal("failed to init telegram transport", zap.Error(err))
	}
	gw := notify.NewGateway(tg, log)

	c := consumer.NewOrderEventConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, gw, cfg.Notify.Timeout, log)
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting order notifier",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic),
		zap.String("group_id", cfg.Kafka.GroupID))

	if err := c.Run(ctx); err != nil {
		log.Error("notifier stopped with error", zap.Error(err))
	}
	log.Info("Order notifier stopped")
}
