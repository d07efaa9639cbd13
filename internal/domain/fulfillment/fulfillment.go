package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/gamestore/internal/domain/order"
	"github.com/Zhima-Mochi/gamestore/internal/domain/product"
)

var (
	ErrOutOfStock            = errors.New("out of stock")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrInvalidQuantity       = errors.New("quantity must be at least 1")
	ErrQuantityLimitExceeded = errors.New("quantity limit exceeded")
	ErrUnknownCategory       = product.ErrUnknownCategory
	ErrNoProduct             = errors.New("fulfillment requires a product")
)

const (
	MaxDigitalCopies = 5
	MaxDLCUnits      = 1
)

// Strategy carries the purchase rules of one product category, bound to one product.
type Strategy interface {
	Category() product.Category
	// Validate gates an add-to-cart of quantity units.
	Validate(quantity int) error
	// Fulfill runs the post-purchase effect for the bound product within a paid order.
	Fulfill(ctx context.Context, o *order.Order) (Delivery, error)
}

// Delivery reports the outcome of fulfilling one order line.
type Delivery struct {
	OrderID        string
	ProductID      string
	ProductName    string
	Category       product.Category
	Quantity       int
	Message        string
	ActivationCode string
	DurationDays   int
	RemainingStock int
}

// Resolve builds the strategy for p's category. A fresh strategy is returned on every call.
func Resolve(p *product.Product) (Strategy, error) {
	if p == nil {
		return nil, ErrNoProduct
	}
	switch p.Category {
	case product.CategoryPhysical:
		return physical{p: p}, nil
	case product.CategoryDigital:
		return digital{p: p}, nil
	case product.CategoryDLC:
		return dlc{p: p}, nil
	case product.CategorySubscription:
		return subscription{p: p}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, p.Category)
	}
}

func newDelivery(o *order.Order, p *product.Product) Delivery {
	d := Delivery{
		ProductID:   p.ID,
		ProductName: p.Name,
		Category:    p.Category,
	}
	if o != nil {
		d.OrderID = o.ID
		for _, l := range o.Lines {
			if l.Product != nil && l.Product.ID == p.ID {
				d.Quantity += l.Quantity
			}
		}
	}
	return d
}
