package service

import (
	"errors"

	"storefront-service/internal/cart"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrUnauthenticated      = errors.New("recipient id is required")
	ErrInvalidPhone         = errors.New("phone must look like +380XXXXXXXXX")
	ErrInvalidDelivery      = errors.New("city and department are required")
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
	ErrInvalidQuantity      = cart.ErrInvalidQuantity
	ErrInvalidPrice         = errors.New("price must be >= 0")
	ErrDuplicateLine        = errors.New("duplicate product in order lines")
	ErrOrderNotFound        = errors.New("order not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrOutOfStock           = errors.New("product is out of stock")
	ErrInvalidTransition    = errors.New("order status transition not allowed")
	ErrPlacementInProgress  = errors.New("order placement already in progress for this session")

	// ErrPersistence оборачивает ошибки хранилища: fmt.Errorf("%w: %w", ErrPersistence, err)
	ErrPersistence = errors.New("persistence failure")
)
