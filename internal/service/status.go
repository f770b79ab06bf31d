package service

import "storefront-service/internal/models"

func StatusLabel(s models.OrderStatus) string {
	switch s {
	case models.OrderStatusPending:
		return "awaiting"
	case models.OrderStatusProcessing:
		return "in progress"
	case models.OrderStatusCompleted:
		return "done"
	case models.OrderStatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func StatusIcon(s models.OrderStatus) string {
	switch s {
	case models.OrderStatusPending:
		return "🟡"
	case models.OrderStatusProcessing:
		return "🟠"
	case models.OrderStatusCompleted:
		return "🟢"
	case models.OrderStatusCancelled:
		return "🔴"
	default:
		return "⚪"
	}
}
