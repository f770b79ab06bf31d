package notify

import (
	"context"

	"storefront-service/internal/service"
)

func SummaryFromEvent(e service.OrderPlacedEvent) OrderSummary {
	lines := make([]SummaryLine, 0, len(e.Items))
	for _, it := range e.Items {
		lines = append(lines, SummaryLine{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price,
			Subtotal: it.LineTotal,
		})
	}
	return OrderSummary{
		OrderID:       e.OrderID,
		Lines:         lines,
		Total:         e.Total,
		City:          e.City,
		Department:    e.Department,
		Phone:         e.Phone,
		PaymentMethod: string(e.PaymentMethod),
		StatusLabel:   service.StatusLabel(e.Status),
		CreatedAt:     e.CreatedAt,
	}
}

// OrderHook отправляет уведомление получателю заказа после коммита.
type OrderHook struct {
	gw *Gateway
}

func NewOrderHook(gw *Gateway) *OrderHook { return &OrderHook{gw: gw} }

func (h *OrderHook) Name() string { return "telegram-notify" }

func (h *OrderHook) OnOrderPlaced(ctx context.Context, e service.OrderPlacedEvent) error {
	return h.gw.Notify(ctx, e.RecipientID, SummaryFromEvent(e))
}
