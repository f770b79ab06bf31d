package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"type:text;not null;uniqueIndex"`
}

func (Category) TableName() string { return "categories" }

type Product struct {
	ID          uint            `gorm:"primaryKey"`
	CategoryID  uint            `gorm:"not null;index"`
	Name        string          `gorm:"type:text;not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Stock       int32           `gorm:"not null;default:0"`
	Image       string          `gorm:"type:text"`
}

func (Product) TableName() string { return "products" }

func (p Product) InStock() bool { return p.Stock > 0 }

// Статус заказа хранится текстом
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

func (s OrderStatus) Known() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to another.
// Cancellation is allowed from any non-terminal status.
func CanTransition(from, to OrderStatus) bool {
	if !from.Known() || !to.Known() || from.Terminal() {
		return false
	}
	switch to {
	case OrderStatusCancelled:
		return true
	case OrderStatusProcessing:
		return from == OrderStatusPending
	case OrderStatusCompleted:
		return from == OrderStatusProcessing
	}
	return false
}

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentCardOnline     PaymentMethod = "card_online"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentCashOnDelivery || p == PaymentCardOnline
}

type Order struct {
	ID            uint64          `gorm:"primaryKey;autoIncrement"`
	RecipientID   string          `gorm:"type:text;not null;index"`
	Status        OrderStatus     `gorm:"type:text;not null;default:'pending';index"`
	City          string          `gorm:"type:text;not null"`
	Department    string          `gorm:"type:text;not null"`
	ContactPhone  string          `gorm:"type:varchar(13);not null"`
	PaymentMethod PaymentMethod   `gorm:"type:text;not null;default:'cash_on_delivery'"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Incomplete    bool            `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement"`
	OrderID     uint64          `gorm:"not null;index;uniqueIndex:ux_order_items_order_product"`
	ProductID   uint            `gorm:"not null;uniqueIndex:ux_order_items_order_product"`
	ProductName string          `gorm:"type:text;not null"`
	Quantity    uint32          `gorm:"type:int;not null"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(12,2);not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (OrderItem) TableName() string { return "order_items" }
