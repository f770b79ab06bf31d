package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultInterval      = 15 * time.Minute
	sessionSweepInterval = 5 * time.Minute
)

// SessionSweeper: хранилище сессий, которому нужна ручная очистка.
type SessionSweeper interface {
	Sweep() int
}

type Scheduler struct {
	orders   *ReconcileService
	sessions SessionSweeper
	interval time.Duration
	log      *zap.Logger
	stopCh   chan struct{}
}

// NewScheduler: sessions может быть nil (redis чистит сессии по TTL сам)
func NewScheduler(orders *ReconcileService, sessions SessionSweeper, interval time.Duration, log *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		orders:   orders,
		sessions: sessions,
		interval: interval,
		log:      log,
		stopCh:   make(chan struct{}),
	}
}

// Start запускает планировщик задач
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("starting reconcile scheduler", zap.Duration("interval", s.interval))

	go s.runOrdersSweep(ctx)
	if s.sessions != nil {
		go s.runSessionsSweep(ctx)
	}
}

// Stop останавливает планировщик
func (s *Scheduler) Stop() {
	s.log.Info("stopping reconcile scheduler")
	close(s.stopCh)
}

func (s *Scheduler) runOrdersSweep(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Выполняем сразу при старте
	if _, err := s.orders.FlagIncompleteOrders(ctx); err != nil {
		s.log.Error("initial incomplete orders sweep failed", zap.Error(err))
	}

	for {
		select {
		case <-ticker.C:
			if _, err := s.orders.FlagIncompleteOrders(ctx); err != nil {
				s.log.Error("incomplete orders sweep failed", zap.Error(err))
			}
		case <-s.stopCh:
			s.log.Info("incomplete orders sweep stopped")
			return
		case <-ctx.Done():
			s.log.Info("incomplete orders sweep cancelled")
			return
		}
	}
}

func (s *Scheduler) runSessionsSweep(ctx context.Context) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.sessions.Sweep(); n > 0 {
				s.log.Info("expired sessions removed", zap.Int("count", n))
			}
		case <-s.stopCh:
			s.log.Info("sessions sweep stopped")
			return
		case <-ctx.Done():
			s.log.Info("sessions sweep cancelled")
			return
		}
	}
}

// RunOnceNow выполняет проверку заказов немедленно
func (s *Scheduler) RunOnceNow(ctx context.Context) error {
	_, err := s.orders.FlagIncompleteOrders(ctx)
	return err
}
