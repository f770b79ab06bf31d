package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-service/config"
	"storefront-service/internal/delivery"
	"storefront-service/internal/notify"
	"storefront-service/internal/producer"
	"storefront-service/internal/reconcile"
	"storefront-service/internal/repository"
	"storefront-service/internal/service"
	"storefront-service/internal/session"
	"storefront-service/internal/transport/rest"

	"github.com/Anabol1ks/orderhub-pkg-proto/pkg/database"
	"github.com/Anabol1ks/orderhub-pkg-proto/pkg/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)
	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos := repository.New(db)

	// Сессии и блокировки оформления
	var (
		sessions session.Store
		locker   session.Locker
		sweeper  reconcile.SessionSweeper
	)
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		rdb, err := session.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Fatal("failed to init redis", zap.Error(err))
		}
		defer rdb.Close()
		sessions = session.NewRedisStore(rdb, cfg.Session.TTL)
		locker = session.NewRedisLocker(rdb, log)
	default:
		mem := session.NewMemoryStore(cfg.Session.TTL)
		sessions, sweeper = mem, mem
		locker = session.NewMemoryLocker()
	}

	// Post-commit хуки
	var hooks []service.PostCommitHook
	switch cfg.Notify.Mode {
	case config.NotifyModeInline:
		if cfg.Notify.TelegramToken == "" {
			log.Warn("TELEGRAM_BOT_TOKEN is empty, inline notifications disabled")
			break
		}
		tg, err := notify.NewTelegramTransport(cfg.Notify.TelegramToken)
		if err != nil {
			log.Fatal("failed to init telegram transport", zap.Error(err))
		}
		hooks = append(hooks, notify.NewOrderHook(notify.NewGateway(tg, log)))
	case config.NotifyModeKafka:
		p := producer.NewOrderEventProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer p.Close()
		hooks = append(hooks, p)
	}
	if cfg.SMTP.Host != "" && cfg.SMTP.StaffEmail != "" {
		hooks = append(hooks, notify.NewStaffMailer(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			SSL:      cfg.SMTP.SSL,
		}, cfg.SMTP.StaffEmail, log))
	}
	for _, h := range hooks {
		log.Info("post-commit hook registered", zap.String("hook", h.Name()))
	}
	dispatcher := service.NewDispatcher(log, cfg.Notify.Timeout, hooks...)

	catalog := service.NewCatalogService(repos.Catalog)
	orders := service.NewOrderService(repos, dispatcher, log)
	checkout := service.NewCheckoutService(sessions, locker, catalog, orders, service.CheckoutOptions{
		StrictStock: cfg.StrictStock,
	}, log)

	// Nova Poshta, если задан ключ; иначе только статические списки
	var primary delivery.Provider
	if cfg.Delivery.NovaPoshtaAPIKey != "" {
		primary = delivery.NewNovaPoshtaClient(cfg.Delivery.NovaPoshtaURL, cfg.Delivery.NovaPoshtaAPIKey, cfg.Delivery.Timeout)
	}
	address := delivery.NewFallbackProvider(primary, delivery.NewStaticProvider(), log)

	scheduler := reconcile.NewScheduler(
		reconcile.NewReconcileService(db, cfg.Reconcile.Grace, log),
		sweeper,
		cfg.Reconcile.Interval,
		log,
	)

	h := rest.NewHandler(catalog, orders, checkout, address, log)
	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           rest.Router(h, cfg.AdminToken, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting storefront HTTP server", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		scheduler.Start(gctx)
		<-gctx.Done()
		scheduler.Stop()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down storefront HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("storefront server stopped with error", zap.Error(err))
	}

	// дожидаемся уведомлений по уже оформленным заказам
	dispatcher.Wait()
	log.Info("Storefront HTTP server stopped gracefully")
}
