package product

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("product not found")
	ErrInvalidID     = errors.New("product id is required")
	ErrInvalidPrice  = errors.New("product price must be zero or greater")
	ErrInvalidStock  = errors.New("product stock must be zero or greater")
	ErrInvalidAmount = errors.New("stock amount must be greater than zero")
)

// Attributes is the immutable identity of a catalog entry.
type Attributes struct {
	ID          string
	Name        string
	Genre       string
	Platform    string
	Description string
	Category    Category
}

// Product is a catalog entry. Identity never changes after New; stock is a shared
// counter whose mutations are visible store-wide.
type Product struct {
	Attributes

	mu    sync.RWMutex
	price decimal.Decimal
	stock atomic.Int64
}

func New(attrs Attributes, price decimal.Decimal, stock int) (*Product, error) {
	attrs.ID = strings.ToUpper(strings.TrimSpace(attrs.ID))
	if attrs.ID == "" {
		return nil, ErrInvalidID
	}
	if !attrs.Category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, attrs.Category)
	}
	if price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if stock < 0 {
		return nil, ErrInvalidStock
	}
	p := &Product{Attributes: attrs, price: price}
	p.stock.Store(int64(stock))
	return p, nil
}

func (p *Product) Price() decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.price
}

// SetPrice changes the catalog price. Lines already in a cart keep their captured price.
func (p *Product) SetPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrInvalidPrice
	}
	p.mu.Lock()
	p.price = price
	p.mu.Unlock()
	return nil
}

func (p *Product) Stock() int {
	return int(p.stock.Load())
}

// TryDecrement removes n units only if at least n remain. It reports the stock left
// after the attempt and whether the decrement happened.
func (p *Product) TryDecrement(n int) (int, bool) {
	if n <= 0 {
		return p.Stock(), n == 0
	}
	for {
		cur := p.stock.Load()
		if cur < int64(n) {
			return int(cur), false
		}
		if p.stock.CompareAndSwap(cur, cur-int64(n)) {
			return int(cur) - n, true
		}
	}
}

// Restock adds n units to the counter.
func (p *Product) Restock(n int) (int, error) {
	if n <= 0 {
		return p.Stock(), ErrInvalidAmount
	}
	return int(p.stock.Add(int64(n))), nil
}
