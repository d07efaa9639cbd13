package fulfillment

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/gamestore/internal/domain/order"
	"github.com/Zhima-Mochi/gamestore/internal/domain/product"
)

type physical struct{ p *product.Product }

func (physical) Category() product.Category { return product.CategoryPhysical }

func (s physical) Validate(quantity int) error {
	stock := s.p.Stock()
	if stock <= 0 {
		return fmt.Errorf("%w: %q has no units available", ErrOutOfStock, s.p.Name)
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if quantity > stock {
		return fmt.Errorf("%w: available %d, requested %d", ErrInsufficientStock, stock, quantity)
	}
	return nil
}

// Fulfill decrements stock once per matching line. The decrement is guarded, so stock
// drained by another checkout since Validate fails here instead of going negative.
func (s physical) Fulfill(_ context.Context, o *order.Order) (Delivery, error) {
	d := newDelivery(o, s.p)
	d.RemainingStock = s.p.Stock()
	if o == nil {
		return d, nil
	}
	for _, l := range o.Lines {
		if l.Product == nil || l.Product.ID != s.p.ID {
			continue
		}
		left, ok := s.p.TryDecrement(l.Quantity)
		d.RemainingStock = left
		if !ok {
			return d, fmt.Errorf("%w: %q has %d left, order %s needs %d",
				ErrInsufficientStock, s.p.Name, left, o.ID, l.Quantity)
		}
	}
	d.Message = fmt.Sprintf("Stock updated: %s -> %d units left", s.p.Name, d.RemainingStock)
	return d, nil
}
