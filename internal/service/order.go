package service

import (
	"context"
	"time"

	"storefront-service/internal/cart"
	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
)

type PlaceOrderInput struct {
	RecipientID   string
	City          string
	Department    string
	Phone         string
	PaymentMethod models.PaymentMethod // пусто: оплата при получении
	Lines         []cart.Line
}

// OrderView: заголовок заказа для списка.
type OrderView struct {
	ID            uint64
	Status        models.OrderStatus
	StatusLabel   string
	StatusIcon    string
	City          string
	Department    string
	PaymentMethod models.PaymentMethod
	Total         decimal.Decimal
	CreatedAt     time.Time
}

type OrderItemView struct {
	ProductID uint
	Name      string
	Quantity  uint32
	Price     decimal.Decimal
	LineTotal decimal.Decimal
}

type OrderDetail struct {
	OrderView
	Phone string
	Items []OrderItemView
}

type OrderService interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (uint64, error)
	ListOrders(ctx context.Context, recipientID string) ([]OrderView, error)
	GetOrderDetail(ctx context.Context, orderID uint64, recipientID string) (*OrderDetail, error)
	ChangeStatus(ctx context.Context, orderID uint64, to models.OrderStatus) (*OrderView, error)
}
