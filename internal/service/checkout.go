package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/session"

	"go.uber.org/zap"
)

const defaultPlacementLockTTL = 30 * time.Second

type DeliveryDetails struct {
	City          string
	Department    string
	Phone         string
	PaymentMethod models.PaymentMethod
}

type CheckoutOptions struct {
	StrictStock bool          // отклонять товары без остатка
	LockTTL     time.Duration // время жизни блокировки оформления
}

// CheckoutService ведёт корзину сессии и оформляет по ней заказ.
type CheckoutService struct {
	sessions session.Store
	locker   session.Locker
	catalog  CatalogService
	orders   OrderService
	opt      CheckoutOptions
	log      *zap.Logger
}

func NewCheckoutService(sessions session.Store, locker session.Locker, catalog CatalogService, orders OrderService, opt CheckoutOptions, log *zap.Logger) *CheckoutService {
	if opt.LockTTL <= 0 {
		opt.LockTTL = defaultPlacementLockTTL
	}
	return &CheckoutService{
		sessions: sessions,
		locker:   locker,
		catalog:  catalog,
		orders:   orders,
		opt:      opt,
		log:      log,
	}
}

func (c *CheckoutService) StartSession(ctx context.Context, recipientID string) (*session.Session, error) {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return nil, ErrUnauthenticated
	}
	s, err := c.sessions.Create(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	c.log.Debug("session started", zap.String("session_id", s.ID), zap.String("recipient_id", recipientID))
	return s, nil
}

func (c *CheckoutService) EndSession(ctx context.Context, sessionID string) error {
	return c.sessions.Delete(ctx, sessionID)
}

func (c *CheckoutService) Session(ctx context.Context, sessionID string) (*session.Session, error) {
	return c.sessions.Get(ctx, sessionID)
}

// AddProduct кладёт товар в корзину по текущей цене каталога.
func (c *CheckoutService) AddProduct(ctx context.Context, sessionID string, productID uint) (*session.Session, error) {
	p, err := c.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if c.opt.StrictStock && !p.InStock() {
		return nil, ErrOutOfStock
	}
	return c.sessions.Update(ctx, sessionID, func(s *session.Session) error {
		s.Cart.Add(p.ID, p.Name, p.Price, p.Image)
		return nil
	})
}

func (c *CheckoutService) SetQuantity(ctx context.Context, sessionID string, productID uint, qty int) (*session.Session, error) {
	return c.sessions.Update(ctx, sessionID, func(s *session.Session) error {
		return s.Cart.SetQuantity(productID, qty)
	})
}

func (c *CheckoutService) RemoveProduct(ctx context.Context, sessionID string, productID uint) (*session.Session, error) {
	return c.sessions.Update(ctx, sessionID, func(s *session.Session) error {
		s.Cart.Remove(productID)
		return nil
	})
}

func (c *CheckoutService) ClearCart(ctx context.Context, sessionID string) (*session.Session, error) {
	return c.sessions.Update(ctx, sessionID, func(s *session.Session) error {
		s.Cart.Clear()
		return nil
	})
}

// Checkout places an order from the session cart. Only one placement per
// session runs at a time. After the order is stored, the ordered lines are
// deducted from the cart; lines added while the order was being placed stay.
func (c *CheckoutService) Checkout(ctx context.Context, sessionID string, d DeliveryDetails) (uint64, error) {
	release, err := c.locker.TryLock(ctx, "checkout:"+sessionID, c.opt.LockTTL)
	if errors.Is(err, session.ErrLocked) {
		return 0, ErrPlacementInProgress
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	defer release()

	s, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	lines := s.Cart.Snapshot()
	id, err := c.orders.PlaceOrder(ctx, PlaceOrderInput{
		RecipientID:   s.RecipientID,
		City:          d.City,
		Department:    d.Department,
		Phone:         d.Phone,
		PaymentMethod: d.PaymentMethod,
		Lines:         lines,
	})
	if err != nil {
		return 0, err
	}

	_, err = c.sessions.Update(ctx, sessionID, func(s *session.Session) error {
		s.Cart.Deduct(lines)
		return nil
	})
	if err != nil {
		c.log.Warn("order placed but ordered lines were not removed from the cart",
			zap.Uint64("order_id", id),
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
	return id, nil
}
