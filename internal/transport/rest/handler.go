package rest

import (
	"context"
	"net/http"
	"strconv"

	"storefront-service/internal/delivery"
	"storefront-service/internal/models"
	"storefront-service/internal/service"
	"storefront-service/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Checkout interface {
	StartSession(ctx context.Context, recipientID string) (*session.Session, error)
	EndSession(ctx context.Context, sessionID string) error
	Session(ctx context.Context, sessionID string) (*session.Session, error)
	AddProduct(ctx context.Context, sessionID string, productID uint) (*session.Session, error)
	SetQuantity(ctx context.Context, sessionID string, productID uint, qty int) (*session.Session, error)
	RemoveProduct(ctx context.Context, sessionID string, productID uint) (*session.Session, error)
	ClearCart(ctx context.Context, sessionID string) (*session.Session, error)
	Checkout(ctx context.Context, sessionID string, d service.DeliveryDetails) (uint64, error)
}

type AddressProvider interface {
	Cities(ctx context.Context) (delivery.Result, error)
	Departments(ctx context.Context, city string) (delivery.Result, error)
}

type Handler struct {
	catalog  service.CatalogService
	orders   service.OrderService
	checkout Checkout
	address  AddressProvider
	log      *zap.Logger
}

func NewHandler(catalog service.CatalogService, orders service.OrderService, checkout Checkout, address AddressProvider, log *zap.Logger) *Handler {
	return &Handler{
		catalog:  catalog,
		orders:   orders,
		checkout: checkout,
		address:  address,
		log:      log,
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, body := toHTTPError(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		h.log.Debug("request rejected", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, body)
}

func parseUintParam(c *gin.Context, name string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, NewValidationError("invalid "+name, []FieldError{{Field: name, Message: "must be a positive integer"}}))
		return 0, false
	}
	return v, true
}

func (h *Handler) ListCategories(c *gin.Context) {
	list, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]CategoryResponse, 0, len(list))
	for _, cat := range list {
		out = append(out, CategoryResponse{ID: cat.ID, Name: cat.Name})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) ListProducts(c *gin.Context) {
	var q service.ProductQuery
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewValidationError("invalid category_id", []FieldError{{Field: "category_id", Message: "must be a positive integer"}}))
			return
		}
		cid := uint(id)
		q.CategoryID = &cid
	}
	q.Search = c.Query("q")

	list, err := h.catalog.ListProducts(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]ProductResponse, 0, len(list))
	for i := range list {
		out = append(out, toProductResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	p, err := h.catalog.GetProduct(c.Request.Context(), uint(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *Handler) Cities(c *gin.Context) {
	res, err := h.address.Cities(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, DeliveryListResponse{Items: res.Items, Degraded: res.Degraded})
}

func (h *Handler) Departments(c *gin.Context) {
	city := c.Query("city")
	if city == "" {
		c.JSON(http.StatusBadRequest, NewValidationError("city is required", []FieldError{{Field: "city", Message: "required", Tag: "required"}}))
		return
	}
	res, err := h.address.Departments(c.Request.Context(), city)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, DeliveryListResponse{Items: res.Items, Degraded: res.Degraded})
}

func (h *Handler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewValidationError("invalid request body", []FieldError{}))
		return
	}
	s, err := h.checkout.StartSession(c.Request.Context(), req.RecipientID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSessionResponse(s))
}

func (h *Handler) EndSession(c *gin.Context) {
	if err := h.checkout.EndSession(c.Request.Context(), currentSession(c).ID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, toCartResponse(currentSession(c)))
}

func (h *Handler) AddCartItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewValidationError("invalid request body", []FieldError{{Field: "product_id", Message: "required", Tag: "required"}}))
		return
	}
	s, err := h.checkout.AddProduct(c.Request.Context(), currentSession(c).ID, req.ProductID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(s))
}

func (h *Handler) SetCartItemQuantity(c *gin.Context) {
	pid, ok := parseUintParam(c, "product_id")
	if !ok {
		return
	}
	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewValidationError("invalid request body", []FieldError{}))
		return
	}
	s, err := h.checkout.SetQuantity(c.Request.Context(), currentSession(c).ID, uint(pid), req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(s))
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	pid, ok := parseUintParam(c, "product_id")
	if !ok {
		return
	}
	s, err := h.checkout.RemoveProduct(c.Request.Context(), currentSession(c).ID, uint(pid))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(s))
}

func (h *Handler) ClearCart(c *gin.Context) {
	s, err := h.checkout.ClearCart(c.Request.Context(), currentSession(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(s))
}

func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewValidationError("invalid request body", []FieldError{}))
		return
	}
	id, err := h.checkout.Checkout(c.Request.Context(), currentSession(c).ID, service.DeliveryDetails{
		City:          req.City,
		Department:    req.Department,
		Phone:         req.Phone,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, PlaceOrderResponse{OrderID: id})
}

func (h *Handler) ListOrders(c *gin.Context) {
	list, err := h.orders.ListOrders(c.Request.Context(), currentSession(c).RecipientID)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]OrderResponse, 0, len(list))
	for _, v := range list {
		out = append(out, toOrderResponse(v))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	d, err := h.orders.GetOrderDetail(c.Request.Context(), id, currentSession(c).RecipientID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderDetailResponse(d))
}

func (h *Handler) ChangeOrderStatus(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewValidationError("invalid request body", []FieldError{{Field: "status", Message: "required", Tag: "required"}}))
		return
	}
	to := models.OrderStatus(req.Status)
	if !to.Known() {
		c.JSON(http.StatusBadRequest, NewValidationError("unknown status", []FieldError{{Field: "status", Message: "pending, processing, completed or cancelled", Tag: "oneof"}}))
		return
	}
	v, err := h.orders.ChangeStatus(c.Request.Context(), id, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*v))
}
