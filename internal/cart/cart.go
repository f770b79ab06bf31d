package cart

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// MaxQuantity совпадает с верхней границей колонки order_items.quantity (int4).
const MaxQuantity = math.MaxInt32

var (
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 2147483647")
	ErrLineNotFound    = errors.New("product is not in the cart")
)

// Line: одна позиция корзины; цена фиксируется в момент добавления.
type Line struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"qty"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered set of lines, at most one per product id.
// It belongs to a single session and is not safe for concurrent use.
type Cart struct {
	lines []Line
}

func New() *Cart { return &Cart{} }

func (c *Cart) index(productID uint) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add increments the quantity of an existing line or appends a new one with quantity 1.
func (c *Cart) Add(productID uint, name string, price decimal.Decimal, image string) {
	if i := c.index(productID); i >= 0 {
		if c.lines[i].Quantity < MaxQuantity {
			c.lines[i].Quantity++
		}
		return
	}
	c.lines = append(c.lines, Line{
		ProductID: productID,
		Name:      name,
		Price:     price,
		Image:     image,
		Quantity:  1,
	})
}

func (c *Cart) Remove(productID uint) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// ValidQuantity reports whether qty fits a cart line.
func ValidQuantity(qty int) bool {
	return qty >= 1 && int64(qty) <= MaxQuantity
}

func (c *Cart) SetQuantity(productID uint, qty int) error {
	if !ValidQuantity(qty) {
		return ErrInvalidQuantity
	}
	i := c.index(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	c.lines[i].Quantity = qty
	return nil
}

func (c *Cart) TotalItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) Clear() { c.lines = nil }

// Deduct removes the given lines from the cart: the quantity of each matching
// line is reduced and lines that drop to zero are removed. Lines added after
// the snapshot was taken stay in the cart.
func (c *Cart) Deduct(lines []Line) {
	for _, l := range lines {
		i := c.index(l.ProductID)
		if i < 0 {
			continue
		}
		if c.lines[i].Quantity > l.Quantity {
			c.lines[i].Quantity -= l.Quantity
			continue
		}
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Snapshot returns a copy of the lines; later cart mutations don't affect it.
func (c *Cart) Snapshot() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Clone returns an independent copy of the cart.
func (c *Cart) Clone() *Cart {
	return &Cart{lines: c.Snapshot()}
}

func (c Cart) MarshalJSON() ([]byte, error) {
	lines := c.lines
	if lines == nil {
		lines = []Line{}
	}
	return json.Marshal(lines)
}

// UnmarshalJSON restores a cart, merging duplicate product ids.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var raw []Line
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	restored := Cart{}
	for _, l := range raw {
		if !ValidQuantity(l.Quantity) {
			return ErrInvalidQuantity
		}
		if i := restored.index(l.ProductID); i >= 0 {
			merged := restored.lines[i].Quantity + l.Quantity
			if !ValidQuantity(merged) {
				return ErrInvalidQuantity
			}
			restored.lines[i].Quantity = merged
			continue
		}
		restored.lines = append(restored.lines, l)
	}
	*c = restored
	return nil
}
