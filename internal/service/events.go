package service

import (
	"context"
	"time"

	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
)

type OrderItemEvent struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  uint32          `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderPlacedEvent публикуется только после коммита транзакции заказа.
type OrderPlacedEvent struct {
	OrderID       uint64               `json:"order_id"`
	RecipientID   string               `json:"recipient_id"`
	Status        models.OrderStatus   `json:"status"`
	City          string               `json:"city"`
	Department    string               `json:"department"`
	Phone         string               `json:"phone"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Items         []OrderItemEvent     `json:"items"`
	Total         decimal.Decimal      `json:"total"`
	CreatedAt     time.Time            `json:"created_at"`
}

func newOrderPlacedEvent(o *models.Order, items []models.OrderItem) OrderPlacedEvent {
	evItems := make([]OrderItemEvent, 0, len(items))
	for _, it := range items {
		evItems = append(evItems, OrderItemEvent{
			ProductID: it.ProductID,
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			Price:     it.Price,
			LineTotal: it.LineTotal,
		})
	}
	return OrderPlacedEvent{
		OrderID:       o.ID,
		RecipientID:   o.RecipientID,
		Status:        o.Status,
		City:          o.City,
		Department:    o.Department,
		Phone:         o.ContactPhone,
		PaymentMethod: o.PaymentMethod,
		Items:         evItems,
		Total:         o.Total,
		CreatedAt:     o.CreatedAt,
	}
}

// PostCommitHook реагирует на уже зафиксированный заказ. Ошибка хука
// логируется и не влияет на результат оформления заказа.
type PostCommitHook interface {
	Name() string
	OnOrderPlaced(ctx context.Context, e OrderPlacedEvent) error
}

type EventDispatcher interface {
	Dispatch(ctx context.Context, e OrderPlacedEvent)
}
