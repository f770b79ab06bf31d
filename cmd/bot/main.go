package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"storefront-service/config"
	"storefront-service/internal/repository"
	"storefront-service/internal/service"
	"storefront-service/internal/transport/telegram"

	"github.com/Anabol1ks/orderhub-pkg-proto/pkg/database"
	"github.com/Anabol1ks/orderhub-pkg-proto/pkg/logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const pollTimeoutSeconds = 60

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.LoadBot(log)
	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	bot, err := tgbotapi.NewBotAPI(cfg.Notify.TelegramToken)
	if err != nil {
		log.Fatal("failed to init telegram bot", zap.Error(err))
	}
	bot.Debug = isDev
	log.Info("Authorized telegram bot", zap.String("username", bot.Self.UserName))

	// бот только читает заказы, события не публикуются
	orders := service.NewOrderService(repository.New(db), nil, log)
	h := telegram.NewHandler(bot, orders, cfg.ShopURL, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	updates := bot.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		bot.StopReceivingUpdates()
	}()

	h.Run(ctx, updates)
	log.Info("Telegram bot stopped")
}
