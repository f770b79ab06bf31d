package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultHookTimeout = 10 * time.Second

// Dispatcher runs post-commit hooks in the background. Each hook gets its own
// timeout and a context detached from the request, so a client disconnect
// does not abort notifications of a committed order.
type Dispatcher struct {
	hooks   []PostCommitHook
	timeout time.Duration
	log     *zap.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(log *zap.Logger, timeout time.Duration, hooks ...PostCommitHook) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultHookTimeout
	}
	return &Dispatcher{
		hooks:   hooks,
		timeout: timeout,
		log:     log,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, e OrderPlacedEvent) {
	base := context.WithoutCancel(ctx)
	for _, h := range d.hooks {
		d.wg.Add(1)
		go d.run(base, h, e)
	}
}

func (d *Dispatcher) run(ctx context.Context, h PostCommitHook, e OrderPlacedEvent) {
	defer d.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("post-commit hook panicked", zap.String("hook", h.Name()), zap.Uint64("order_id", e.OrderID), zap.Any("panic", r))
		}
	}()

	hctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := h.OnOrderPlaced(hctx, e); err != nil {
		d.log.Warn("post-commit hook failed", zap.String("hook", h.Name()), zap.Uint64("order_id", e.OrderID), zap.Error(err))
		return
	}
	d.log.Debug("post-commit hook done", zap.String("hook", h.Name()), zap.Uint64("order_id", e.OrderID))
}

// Wait blocks until all dispatched hooks have returned.
func (d *Dispatcher) Wait() { d.wg.Wait() }
