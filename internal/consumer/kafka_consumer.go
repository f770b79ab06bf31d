package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"storefront-service/internal/notify"
	"storefront-service/internal/service"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Notifier interface {
	Notify(ctx context.Context, recipientID string, s notify.OrderSummary) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// OrderEventConsumer читает события заказов и отправляет уведомления.
type OrderEventConsumer struct {
	reader   messageReader
	notifier Notifier
	timeout  time.Duration
	log      *zap.Logger
}

func NewOrderEventConsumer(brokers []string, groupID, topic string, notifier Notifier, timeout time.Duration, log *zap.Logger) *OrderEventConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		MinBytes:          10e3,
		MaxBytes:          10e6,
		CommitInterval:    time.Second,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	})
	return &OrderEventConsumer{reader: r, notifier: notifier, timeout: timeout, log: log}
}

func (c *OrderEventConsumer) Run(ctx context.Context) error {
	c.log.Info("kafka consumer started")
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			c.log.Error("read message", zap.Error(err))
			continue
		}
		c.handle(ctx, m)
	}
}

func (c *OrderEventConsumer) handle(ctx context.Context, m kafka.Message) {
	var ev service.OrderPlacedEvent
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		c.log.Error("unmarshal order event", zap.ByteString("value", m.Value), zap.Error(err))
		return
	}
	if ev.OrderID == 0 || ev.RecipientID == "" {
		c.log.Warn("invalid order event", zap.Any("event", ev))
		return
	}

	nctx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		nctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	// DeliveryFailed не повторяем: заказ уже сохранён, сообщение коммитится
	if err := c.notifier.Notify(nctx, ev.RecipientID, notify.SummaryFromEvent(ev)); err != nil {
		c.log.Error("order notification failed", zap.Uint64("order_id", ev.OrderID), zap.Error(err))
		return
	}
	c.log.Info("order notification delivered", zap.Uint64("order_id", ev.OrderID))
}

func (c *OrderEventConsumer) Close() error { return c.reader.Close() }
