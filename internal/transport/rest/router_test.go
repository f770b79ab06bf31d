package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-service/internal/delivery"
	"storefront-service/internal/models"
	"storefront-service/internal/service"
	"storefront-service/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockCatalogService struct {
	ListCategoriesFunc func(ctx context.Context) ([]models.Category, error)
	ListProductsFunc   func(ctx context.Context, q service.ProductQuery) ([]models.Product, error)
	GetProductFunc     func(ctx context.Context, id uint) (*models.Product, error)
}

func (m *MockCatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	if m.ListCategoriesFunc != nil {
		return m.ListCategoriesFunc(ctx)
	}
	return nil, nil
}

func (m *MockCatalogService) ListProducts(ctx context.Context, q service.ProductQuery) ([]models.Product, error) {
	if m.ListProductsFunc != nil {
		return m.ListProductsFunc(ctx, q)
	}
	return nil, nil
}

func (m *MockCatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, id)
	}
	return nil, service.ErrProductNotFound
}

type MockOrderService struct {
	PlaceOrderFunc     func(ctx context.Context, in service.PlaceOrderInput) (uint64, error)
	ListOrdersFunc     func(ctx context.Context, recipientID string) ([]service.OrderView, error)
	GetOrderDetailFunc func(ctx context.Context, orderID uint64, recipientID string) (*service.OrderDetail, error)
	ChangeStatusFunc   func(ctx context.Context, orderID uint64, to models.OrderStatus) (*service.OrderView, error)
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, in service.PlaceOrderInput) (uint64, error) {
	if m.PlaceOrderFunc != nil {
		return m.PlaceOrderFunc(ctx, in)
	}
	return 1, nil
}

func (m *MockOrderService) ListOrders(ctx context.Context, recipientID string) ([]service.OrderView, error) {
	if m.ListOrdersFunc != nil {
		return m.ListOrdersFunc(ctx, recipientID)
	}
	return nil, nil
}

func (m *MockOrderService) GetOrderDetail(ctx context.Context, orderID uint64, recipientID string) (*service.OrderDetail, error) {
	if m.GetOrderDetailFunc != nil {
		return m.GetOrderDetailFunc(ctx, orderID, recipientID)
	}
	return nil, service.ErrOrderNotFound
}

func (m *MockOrderService) ChangeStatus(ctx context.Context, orderID uint64, to models.OrderStatus) (*service.OrderView, error) {
	if m.ChangeStatusFunc != nil {
		return m.ChangeStatusFunc(ctx, orderID, to)
	}
	return nil, service.ErrOrderNotFound
}

type staticAddress struct{}

func (staticAddress) Cities(context.Context) (delivery.Result, error) {
	return delivery.Result{Items: delivery.DefaultCities, Degraded: true}, nil
}

func (staticAddress) Departments(context.Context, string) (delivery.Result, error) {
	return delivery.Result{Items: delivery.DefaultDepartments, Degraded: true}, nil
}

type testAPI struct {
	engine  *gin.Engine
	catalog *MockCatalogService
	orders  *MockOrderService
}

const adminToken = "s3cret"

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog := &MockCatalogService{
		GetProductFunc: func(_ context.Context, id uint) (*models.Product, error) {
			switch id {
			case 1:
				return &models.Product{ID: 1, Name: "Щітка", Price: decimal.NewFromInt(176), Stock: 5}, nil
			case 7:
				return &models.Product{ID: 7, Name: "Trixie", Price: decimal.NewFromInt(973), Stock: 3}, nil
			}
			return nil, service.ErrProductNotFound
		},
	}
	orders := &MockOrderService{}
	checkout := service.NewCheckoutService(
		session.NewMemoryStore(0), session.NewMemoryLocker(),
		catalog, orders,
		service.CheckoutOptions{LockTTL: time.Minute},
		zap.NewNop(),
	)
	h := NewHandler(catalog, orders, checkout, staticAddress{}, zap.NewNop())
	return &testAPI{engine: Router(h, adminToken, zap.NewNop()), catalog: catalog, orders: orders}
}

func (a *testAPI) do(t *testing.T, method, path, sessionID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(HeaderSessionID, sessionID)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testAPI) startSession(t *testing.T, recipient string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/sessions", "", StartSessionRequest{RecipientID: recipient})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) BaseError {
	t.Helper()
	var e BaseError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCartFlow(t *testing.T) {
	api := newTestAPI(t)
	sid := api.startSession(t, "555")

	for _, pid := range []uint{1, 7, 7} {
		w := api.do(t, http.MethodPost, "/api/v1/cart/items", sid, AddItemRequest{ProductID: pid})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := api.do(t, http.MethodGet, "/api/v1/cart", sid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cart CartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	assert.Equal(t, 3, cart.TotalItems)
	assert.Equal(t, "2122.00", cart.TotalPrice)
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, "1946.00", cart.Lines[1].Subtotal)

	w = api.do(t, http.MethodPut, "/api/v1/cart/items/7", sid, SetQuantityRequest{Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "quantity", decodeError(t, w).Fields[0].Field)

	w = api.do(t, http.MethodPut, "/api/v1/cart/items/99", sid, SetQuantityRequest{Quantity: 2})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodDelete, "/api/v1/cart/items/7", sid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	assert.Equal(t, 1, cart.TotalItems)

	w = api.do(t, http.MethodPost, "/api/v1/cart/items", sid, AddItemRequest{ProductID: 404})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionRequired(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/cart", "unknown", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/sessions", "", StartSessionRequest{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	sid := api.startSession(t, "555")
	w = api.do(t, http.MethodDelete, "/api/v1/sessions", sid, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = api.do(t, http.MethodGet, "/api/v1/cart", sid, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPlaceOrder(t *testing.T) {
	api := newTestAPI(t)
	var got service.PlaceOrderInput
	api.orders.PlaceOrderFunc = func(_ context.Context, in service.PlaceOrderInput) (uint64, error) {
		got = in
		return 42, nil
	}
	sid := api.startSession(t, "555")
	api.do(t, http.MethodPost, "/api/v1/cart/items", sid, AddItemRequest{ProductID: 1})

	w := api.do(t, http.MethodPost, "/api/v1/orders", sid, PlaceOrderRequest{
		City: "Kyiv", Department: "Branch #1", Phone: "+380991112233",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp PlaceOrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint64(42), resp.OrderID)
	assert.Equal(t, "555", got.RecipientID)
	require.Len(t, got.Lines, 1)

	// корзина очищена после успешного заказа
	w = api.do(t, http.MethodGet, "/api/v1/cart", sid, nil)
	var cart CartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	assert.Equal(t, 0, cart.TotalItems)
}

func TestPlaceOrder_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{service.ErrEmptyCart, http.StatusBadRequest, "validation_error"},
		{service.ErrInvalidPhone, http.StatusBadRequest, "validation_error"},
		{service.ErrUnauthenticated, http.StatusUnauthorized, "unauthorized"},
		{service.ErrPlacementInProgress, http.StatusConflict, "conflict"},
		{service.ErrPersistence, http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			api := newTestAPI(t)
			api.orders.PlaceOrderFunc = func(context.Context, service.PlaceOrderInput) (uint64, error) {
				return 0, tc.err
			}
			sid := api.startSession(t, "555")
			w := api.do(t, http.MethodPost, "/api/v1/orders", sid, PlaceOrderRequest{Phone: "+380991112233"})
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, decodeError(t, w).Code)
		})
	}
}

func TestOrders(t *testing.T) {
	api := newTestAPI(t)
	api.orders.ListOrdersFunc = func(_ context.Context, recipientID string) ([]service.OrderView, error) {
		if recipientID != "555" {
			return nil, nil
		}
		return []service.OrderView{{ID: 2, Status: models.OrderStatusPending, StatusLabel: "awaiting", StatusIcon: "🟡", Total: decimal.NewFromInt(2122)}}, nil
	}
	api.orders.GetOrderDetailFunc = func(_ context.Context, id uint64, recipientID string) (*service.OrderDetail, error) {
		if id != 2 || recipientID != "555" {
			return nil, service.ErrOrderNotFound
		}
		return &service.OrderDetail{
			OrderView: service.OrderView{ID: 2, Total: decimal.NewFromInt(2122)},
			Items:     []service.OrderItemView{{ProductID: 1, Name: "Щітка", Quantity: 1, Price: decimal.NewFromInt(176), LineTotal: decimal.NewFromInt(176)}},
		}, nil
	}

	sid := api.startSession(t, "555")
	w := api.do(t, http.MethodGet, "/api/v1/orders", sid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []OrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "awaiting", list[0].StatusLabel)
	assert.Equal(t, "2122.00", list[0].Total)

	w = api.do(t, http.MethodGet, "/api/v1/orders/2", sid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var d OrderDetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, "176.00", d.Items[0].Price)

	other := api.startSession(t, "777")
	w = api.do(t, http.MethodGet, "/api/v1/orders/2", other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/orders/abc", sid, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminChangeStatus(t *testing.T) {
	api := newTestAPI(t)
	api.orders.ChangeStatusFunc = func(_ context.Context, id uint64, to models.OrderStatus) (*service.OrderView, error) {
		if to == models.OrderStatusCompleted {
			return nil, service.ErrInvalidTransition
		}
		return &service.OrderView{ID: id, Status: to, StatusLabel: service.StatusLabel(to)}, nil
	}

	send := func(token, status string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/orders/5/status", bytes.NewBufferString(`{"status":"`+status+`"}`))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		api.engine.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, send("", "processing").Code)
	assert.Equal(t, http.StatusUnauthorized, send("wrong", "processing").Code)
	assert.Equal(t, http.StatusBadRequest, send(adminToken, "shipped").Code)
	assert.Equal(t, http.StatusConflict, send(adminToken, "completed").Code)

	w := send(adminToken, "processing")
	require.Equal(t, http.StatusOK, w.Code)
	var resp OrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "in progress", resp.StatusLabel)
}

func TestCatalogAndDelivery(t *testing.T) {
	api := newTestAPI(t)
	var gotQuery service.ProductQuery
	api.catalog.ListProductsFunc = func(_ context.Context, q service.ProductQuery) ([]models.Product, error) {
		gotQuery = q
		return []models.Product{{ID: 1, CategoryID: 3, Name: "Щітка", Price: decimal.NewFromInt(176), Stock: 0}}, nil
	}

	w := api.do(t, http.MethodGet, "/api/v1/products?category_id=3&q=trixie", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gotQuery.CategoryID)
	assert.Equal(t, uint(3), *gotQuery.CategoryID)
	assert.Equal(t, "trixie", gotQuery.Search)
	var products []ProductResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	assert.False(t, products[0].InStock)
	assert.Equal(t, "176.00", products[0].Price)

	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodGet, "/api/v1/products?category_id=x", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/api/v1/products/9", "", nil).Code)

	w = api.do(t, http.MethodGet, "/api/v1/delivery/cities", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cities DeliveryListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cities))
	assert.True(t, cities.Degraded)
	assert.Contains(t, cities.Items, "Київ")

	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodGet, "/api/v1/delivery/departments", "", nil).Code)
}

func TestExtractBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":        "abc",
		"bearer \"abc\"":    "abc",
		"Bearer abc, extra": "abc",
		"Bearer  abc  def":  "abc",
	}
	for in, want := range cases {
		got, ok := ExtractBearerToken(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ExtractBearerToken("Basic abc")
	assert.False(t, ok)
}
