package rest

import (
	"errors"
	"net/http"

	"storefront-service/internal/cart"
	"storefront-service/internal/service"
	"storefront-service/internal/session"
)

var fieldOf = map[error]FieldError{
	service.ErrInvalidPhone:         {Field: "phone", Message: "phone must look like +380XXXXXXXXX", Tag: "format"},
	service.ErrInvalidDelivery:      {Field: "city", Message: "city and department are required", Tag: "required"},
	service.ErrInvalidPaymentMethod: {Field: "payment_method", Message: "cash_on_delivery or card_online", Tag: "oneof"},
	service.ErrInvalidQuantity:      {Field: "quantity", Message: "quantity must be between 1 and 2147483647", Tag: "range"},
}

// toHTTPError переводит доменные ошибки в статус и тело ответа
func toHTTPError(err error) (int, BaseError) {
	for target, fe := range fieldOf {
		if errors.Is(err, target) {
			return http.StatusBadRequest, NewValidationError(target.Error(), []FieldError{fe})
		}
	}

	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrDuplicateLine):
		return http.StatusBadRequest, NewValidationError(err.Error(), nil)
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, NewUnauthorizedError(err.Error())
	case errors.Is(err, session.ErrNotFound):
		return http.StatusUnauthorized, NewUnauthorizedError("session not found or expired")
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound, NewNotFoundError(err.Error())
	case errors.Is(err, service.ErrPlacementInProgress),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrOutOfStock):
		return http.StatusConflict, NewConflictError(err.Error())
	default:
		return http.StatusInternalServerError, NewInternalError("")
	}
}
