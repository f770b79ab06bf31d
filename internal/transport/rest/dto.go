package rest

import (
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/service"
	"storefront-service/internal/session"
)

// BaseError универсальный корневой формат ошибки
// Code — машинно-ориентированный код (snake_case)
// Message — краткое человеко-читаемое описание
// Fields — для валидационных ошибок (имя поля + текст)
type BaseError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details string       `json:"details,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag,omitempty"`
}

func NewValidationError(msg string, fields []FieldError) BaseError {
	return BaseError{Code: "validation_error", Message: msg, Fields: fields}
}
func NewConflictError(msg string) BaseError {
	return BaseError{Code: "conflict", Message: msg}
}
func NewUnauthorizedError(msg string) BaseError {
	return BaseError{Code: "unauthorized", Message: msg}
}
func NewNotFoundError(msg string) BaseError {
	return BaseError{Code: "not_found", Message: msg}
}
func NewInternalError(details string) BaseError {
	return BaseError{Code: "internal_error", Message: "internal server error", Details: details}
}

type CategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ProductResponse struct {
	ID          uint   `json:"id"`
	CategoryID  uint   `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
	Stock       int32  `json:"stock"`
	InStock     bool   `json:"in_stock"`
	Image       string `json:"image,omitempty"`
}

func toProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Stock:       p.Stock,
		InStock:     p.InStock(),
		Image:       p.Image,
	}
}

type DeliveryListResponse struct {
	Items    []string `json:"items"`
	Degraded bool     `json:"degraded"`
}

type StartSessionRequest struct {
	RecipientID string `json:"recipient_id"`
}

type SessionResponse struct {
	SessionID   string       `json:"session_id"`
	RecipientID string       `json:"recipient_id"`
	Cart        CartResponse `json:"cart"`
}

type CartLineResponse struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type CartResponse struct {
	Lines      []CartLineResponse `json:"lines"`
	TotalItems int                `json:"total_items"`
	TotalPrice string             `json:"total_price"`
}

func toCartResponse(s *session.Session) CartResponse {
	lines := s.Cart.Snapshot()
	out := CartResponse{
		Lines:      make([]CartLineResponse, 0, len(lines)),
		TotalItems: s.Cart.TotalItemCount(),
		TotalPrice: s.Cart.TotalPrice().StringFixed(2),
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, CartLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price.StringFixed(2),
			Image:     l.Image,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal().StringFixed(2),
		})
	}
	return out
}

func toSessionResponse(s *session.Session) SessionResponse {
	return SessionResponse{SessionID: s.ID, RecipientID: s.RecipientID, Cart: toCartResponse(s)}
}

type AddItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type PlaceOrderRequest struct {
	City          string `json:"city"`
	Department    string `json:"department"`
	Phone         string `json:"phone"`
	PaymentMethod string `json:"payment_method"`
}

type PlaceOrderResponse struct {
	OrderID uint64 `json:"order_id"`
}

type OrderResponse struct {
	ID            uint64    `json:"id"`
	Status        string    `json:"status"`
	StatusLabel   string    `json:"status_label"`
	StatusIcon    string    `json:"status_icon"`
	City          string    `json:"city"`
	Department    string    `json:"department"`
	PaymentMethod string    `json:"payment_method"`
	Total         string    `json:"total"`
	CreatedAt     time.Time `json:"created_at"`
}

func toOrderResponse(v service.OrderView) OrderResponse {
	return OrderResponse{
		ID:            v.ID,
		Status:        string(v.Status),
		StatusLabel:   v.StatusLabel,
		StatusIcon:    v.StatusIcon,
		City:          v.City,
		Department:    v.Department,
		PaymentMethod: string(v.PaymentMethod),
		Total:         v.Total.StringFixed(2),
		CreatedAt:     v.CreatedAt,
	}
}

type OrderItemResponse struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Quantity  uint32 `json:"quantity"`
	Price     string `json:"price"`
	LineTotal string `json:"line_total"`
}

type OrderDetailResponse struct {
	OrderResponse
	Phone string              `json:"phone"`
	Items []OrderItemResponse `json:"items"`
}

func toOrderDetailResponse(d *service.OrderDetail) OrderDetailResponse {
	out := OrderDetailResponse{
		OrderResponse: toOrderResponse(d.OrderView),
		Phone:         d.Phone,
		Items:         make([]OrderItemResponse, 0, len(d.Items)),
	}
	for _, it := range d.Items {
		out.Items = append(out.Items, OrderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price.StringFixed(2),
			LineTotal: it.LineTotal.StringFixed(2),
		})
	}
	return out
}

type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
