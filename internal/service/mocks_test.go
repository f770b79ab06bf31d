package service_test

import (
	"context"
	"sync"
	"sync/atomic"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"
	"storefront-service/internal/service"

	"github.com/shopspring/decimal"
)

// memDB: in-memory хранилище заказов с семантикой транзакций.
type memDB struct {
	mu        sync.Mutex
	nextID    uint64
	orders    map[uint64]models.Order
	items     map[uint64][]models.OrderItem
	calls     *atomic.Int64
	failItems error
}

func newMemDB() *memDB {
	return &memDB{
		orders: make(map[uint64]models.Order),
		items:  make(map[uint64][]models.OrderItem),
		calls:  &atomic.Int64{},
	}
}

func (db *memDB) clone() *memDB {
	cp := &memDB{
		nextID:    db.nextID,
		orders:    make(map[uint64]models.Order, len(db.orders)),
		items:     make(map[uint64][]models.OrderItem, len(db.items)),
		calls:     db.calls,
		failItems: db.failItems,
	}
	for k, v := range db.orders {
		cp.orders[k] = v
	}
	for k, v := range db.items {
		cp.items[k] = append([]models.OrderItem(nil), v...)
	}
	return cp
}

func (db *memDB) orderCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.orders)
}

type memOrders struct {
	db   *memDB
	inTx bool
}

func (r *memOrders) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.db.mu.Lock()
	return r.db.mu.Unlock
}

func (r *memOrders) Create(_ context.Context, o *models.Order) error {
	defer r.lock()()
	r.db.calls.Add(1)
	r.db.nextID++
	o.ID = r.db.nextID
	cp := *o
	cp.Items = nil
	r.db.orders[o.ID] = cp
	return nil
}

func (r *memOrders) GetByID(_ context.Context, id uint64) (*models.Order, error) {
	defer r.lock()()
	r.db.calls.Add(1)
	o, ok := r.db.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *memOrders) GetByIDForRecipient(_ context.Context, id uint64, recipientID string) (*models.Order, error) {
	defer r.lock()()
	r.db.calls.Add(1)
	o, ok := r.db.orders[id]
	if !ok || o.RecipientID != recipientID {
		return nil, nil
	}
	return &o, nil
}

func (r *memOrders) ListByRecipient(_ context.Context, recipientID string) ([]models.Order, error) {
	defer r.lock()()
	r.db.calls.Add(1)
	var out []models.Order
	// id монотонен, поэтому обратный порядок id == новые первыми
	for id := r.db.nextID; id > 0; id-- {
		if o, ok := r.db.orders[id]; ok && o.RecipientID == recipientID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrders) UpdateStatus(_ context.Context, id uint64, from, to models.OrderStatus) (bool, error) {
	defer r.lock()()
	r.db.calls.Add(1)
	o, ok := r.db.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	r.db.orders[id] = o
	return true, nil
}

func (r *memOrders) WithTx(ctx context.Context, fn func(txOrders repository.OrderRepo, txItems repository.OrderItemRepo) error) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	tx := r.db.clone()
	if err := fn(&memOrders{db: tx, inTx: true}, &memItems{db: tx, inTx: true}); err != nil {
		return err
	}
	r.db.nextID = tx.nextID
	r.db.orders = tx.orders
	r.db.items = tx.items
	return nil
}

type memItems struct {
	db   *memDB
	inTx bool
}

func (r *memItems) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.db.mu.Lock()
	return r.db.mu.Unlock
}

func (r *memItems) BulkCreate(_ context.Context, items []models.OrderItem) error {
	defer r.lock()()
	r.db.calls.Add(1)
	if r.db.failItems != nil {
		return r.db.failItems
	}
	for _, it := range items {
		r.db.items[it.OrderID] = append(r.db.items[it.OrderID], it)
	}
	return nil
}

func (r *memItems) GetByOrderID(_ context.Context, orderID uint64) ([]models.OrderItem, error) {
	defer r.lock()()
	r.db.calls.Add(1)
	return append([]models.OrderItem(nil), r.db.items[orderID]...), nil
}

func (r *memItems) SumByOrder(_ context.Context, orderID uint64) (decimal.Decimal, error) {
	defer r.lock()()
	r.db.calls.Add(1)
	sum := decimal.Zero
	for _, it := range r.db.items[orderID] {
		sum = sum.Add(it.LineTotal)
	}
	return sum, nil
}

// MockCatalogRepo
type MockCatalogRepo struct {
	ListCategoriesFunc func(ctx context.Context) ([]models.Category, error)
	ListProductsFunc   func(ctx context.Context, f repository.ProductFilter) ([]models.Product, error)
	GetProductFunc     func(ctx context.Context, id uint) (*models.Product, error)
}

func (m *MockCatalogRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	if m.ListCategoriesFunc != nil {
		return m.ListCategoriesFunc(ctx)
	}
	return nil, nil
}

func (m *MockCatalogRepo) CreateCategory(context.Context, *models.Category) error { return nil }

func (m *MockCatalogRepo) ListProducts(ctx context.Context, f repository.ProductFilter) ([]models.Product, error) {
	if m.ListProductsFunc != nil {
		return m.ListProductsFunc(ctx, f)
	}
	return nil, nil
}

func (m *MockCatalogRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockCatalogRepo) CreateProduct(context.Context, *models.Product) error { return nil }

func (m *MockCatalogRepo) UpdateFields(context.Context, uint, map[string]any) error { return nil }

// mapCatalog: каталог в памяти, цены можно менять между вызовами.
type mapCatalog struct {
	mu       sync.Mutex
	products map[uint]models.Product
}

func newMapCatalog(products ...models.Product) *mapCatalog {
	c := &mapCatalog{products: make(map[uint]models.Product)}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *mapCatalog) setPrice(id uint, price decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.products[id]
	p.Price = price
	c.products[id] = p
}

func (c *mapCatalog) repo() *MockCatalogRepo {
	return &MockCatalogRepo{
		GetProductFunc: func(_ context.Context, id uint) (*models.Product, error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			p, ok := c.products[id]
			if !ok {
				return nil, nil
			}
			return &p, nil
		},
	}
}

// recordingDispatcher запоминает события вместо запуска хуков.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []service.OrderPlacedEvent
}

func (d *recordingDispatcher) Dispatch(_ context.Context, e service.OrderPlacedEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}

func newRepo(db *memDB, catalog repository.CatalogRepo) *repository.Repository {
	if catalog == nil {
		catalog = &MockCatalogRepo{}
	}
	return &repository.Repository{
		Catalog:    catalog,
		Orders:     &memOrders{db: db},
		OrderItems: &memItems{db: db},
	}
}
