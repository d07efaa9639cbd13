package cart

import (
	"strings"
	"sync"

	"github.com/Zhima-Mochi/gamestore/internal/domain/order"
	"github.com/Zhima-Mochi/gamestore/internal/domain/product"
	"github.com/shopspring/decimal"
)

// Cart holds the active customer's lines. It is not safe for concurrent use; see Session.
type Cart struct {
	lines []order.Line
}

func New() *Cart { return &Cart{} }

// Lines returns a copy of the cart contents in insertion order.
func (c *Cart) Lines() []order.Line {
	return append([]order.Line(nil), c.lines...)
}

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

func (c *Cart) Len() int { return len(c.lines) }

// QuantityOf reports how many units of the product are already in the cart.
func (c *Cart) QuantityOf(productID string) int {
	if i := c.indexOf(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// Add merges quantity into an existing line for the product, keeping its captured price,
// or appends a new line at the current price. It returns the resulting line.
func (c *Cart) Add(p *product.Product, quantity int) (order.Line, bool, error) {
	if p == nil {
		return order.Line{}, false, order.ErrNoProduct
	}
	if quantity <= 0 {
		return order.Line{}, false, order.ErrInvalidQuantity
	}
	if i := c.indexOf(p.ID); i >= 0 {
		c.lines[i].Quantity += quantity
		return c.lines[i], true, nil
	}
	line, err := order.NewLine(p, quantity)
	if err != nil {
		return order.Line{}, false, err
	}
	c.lines = append(c.lines, line)
	return line, false, nil
}

func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) Clear() { c.lines = nil }

func (c *Cart) indexOf(productID string) int {
	for i, l := range c.lines {
		if strings.EqualFold(l.Product.ID, productID) {
			return i
		}
	}
	return -1
}

// Session is one customer's identity and cart, serialised by a mutex.
type Session struct {
	mu       sync.Mutex
	customer string
	cart     *Cart
}

func NewSession() *Session { return &Session{cart: New()} }

// SetCustomer switches the active customer and empties the cart.
func (s *Session) SetCustomer(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customer = strings.TrimSpace(name)
	s.cart = New()
}

func (s *Session) Customer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customer
}

// Do runs fn while holding the session lock.
func (s *Session) Do(fn func(customer string, c *Cart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.customer, s.cart)
}
