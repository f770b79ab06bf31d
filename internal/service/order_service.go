package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront-service/internal/cart"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type orderService struct {
	repo   *repository.Repository
	events EventDispatcher
	log    *zap.Logger
	now    func() time.Time
}

func NewOrderService(repo *repository.Repository, events EventDispatcher, log *zap.Logger) OrderService {
	return &orderService{
		repo:   repo,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

func toOrderView(o *models.Order) OrderView {
	return OrderView{
		ID:            o.ID,
		Status:        o.Status,
		StatusLabel:   StatusLabel(o.Status),
		StatusIcon:    StatusIcon(o.Status),
		City:          o.City,
		Department:    o.Department,
		PaymentMethod: o.PaymentMethod,
		Total:         o.Total,
		CreatedAt:     o.CreatedAt,
	}
}

// validatePlaceOrder проверяет вход до любого обращения к хранилищу.
func validatePlaceOrder(in *PlaceOrderInput) error {
	if len(in.Lines) == 0 {
		return ErrEmptyCart
	}
	in.RecipientID = strings.TrimSpace(in.RecipientID)
	if in.RecipientID == "" {
		return ErrUnauthenticated
	}
	if !ValidPhone(in.Phone) {
		return ErrInvalidPhone
	}
	in.City = strings.TrimSpace(in.City)
	in.Department = strings.TrimSpace(in.Department)
	if in.City == "" || in.Department == "" {
		return ErrInvalidDelivery
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PaymentCashOnDelivery
	}
	if !in.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}
	return nil
}

func (s *orderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (uint64, error) {
	if err := validatePlaceOrder(&in); err != nil {
		return 0, err
	}

	var (
		now   = s.now()
		total = decimal.Zero
		items = make([]models.OrderItem, 0, len(in.Lines))
		seen  = make(map[uint]struct{}, len(in.Lines))
	)

	// цены берутся из корзины, а не из каталога
	for _, l := range in.Lines {
		if !cart.ValidQuantity(l.Quantity) {
			return 0, ErrInvalidQuantity
		}
		if l.Price.IsNegative() {
			return 0, ErrInvalidPrice
		}
		if _, dup := seen[l.ProductID]; dup {
			return 0, ErrDuplicateLine
		}
		seen[l.ProductID] = struct{}{}

		line := l.Subtotal()
		total = total.Add(line)
		items = append(items, models.OrderItem{
			ProductID:   l.ProductID,
			ProductName: l.Name,
			Quantity:    uint32(l.Quantity),
			Price:       l.Price,
			LineTotal:   line,
			CreatedAt:   now,
		})
	}

	order := &models.Order{
		RecipientID:   in.RecipientID,
		Status:        models.OrderStatusPending,
		City:          in.City,
		Department:    in.Department,
		ContactPhone:  in.Phone,
		PaymentMethod: in.PaymentMethod,
		Total:         total,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.repo.Orders.WithTx(ctx, func(or repository.OrderRepo, ir repository.OrderItemRepo) error {
		if err := or.Create(ctx, order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := ir.BulkCreate(ctx, items); err != nil {
			s.log.Error("order items write failed, rolling back order header",
				zap.Uint64("order_id", order.ID),
				zap.String("recipient_id", order.RecipientID),
				zap.Int("items", len(items)),
				zap.Error(err))
			return fmt.Errorf("insert order items: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.log.Info("order placed",
		zap.Uint64("order_id", order.ID),
		zap.String("recipient_id", order.RecipientID),
		zap.String("total", total.StringFixed(2)))

	if s.events != nil {
		s.events.Dispatch(ctx, newOrderPlacedEvent(order, items))
	}
	return order.ID, nil
}

func (s *orderService) ListOrders(ctx context.Context, recipientID string) ([]OrderView, error) {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return nil, ErrUnauthenticated
	}
	orders, err := s.repo.Orders.ListByRecipient(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	out := make([]OrderView, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderView(&orders[i]))
	}
	return out, nil
}

func (s *orderService) GetOrderDetail(ctx context.Context, orderID uint64, recipientID string) (*OrderDetail, error) {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return nil, ErrUnauthenticated
	}
	ord, err := s.repo.Orders.GetByIDForRecipient(ctx, orderID, recipientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	// чужой и несуществующий заказ неотличимы для вызывающего
	if ord == nil {
		return nil, ErrOrderNotFound
	}

	rows, err := s.repo.OrderItems.GetByOrderID(ctx, ord.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	d := &OrderDetail{
		OrderView: toOrderView(ord),
		Phone:     ord.ContactPhone,
		Items:     make([]OrderItemView, 0, len(rows)),
	}
	total := decimal.Zero
	for _, it := range rows {
		total = total.Add(it.LineTotal)
		d.Items = append(d.Items, OrderItemView{
			ProductID: it.ProductID,
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			Price:     it.Price,
			LineTotal: it.LineTotal,
		})
	}
	d.Total = total
	return d, nil
}

func (s *orderService) ChangeStatus(ctx context.Context, orderID uint64, to models.OrderStatus) (*OrderView, error) {
	ord, err := s.repo.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	if !models.CanTransition(ord.Status, to) {
		return nil, ErrInvalidTransition
	}

	ok, err := s.repo.Orders.UpdateStatus(ctx, orderID, ord.Status, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	// статус успели поменять параллельно
	if !ok {
		return nil, ErrInvalidTransition
	}

	s.log.Info("order status changed",
		zap.Uint64("order_id", orderID),
		zap.String("from", string(ord.Status)),
		zap.String("to", string(to)))

	ord.Status = to
	v := toOrderView(ord)
	return &v, nil
}
