package fulfillment

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/gamestore/internal/domain/order"
	"github.com/Zhima-Mochi/gamestore/internal/domain/product"
)

type dlc struct{ p *product.Product }

func (dlc) Category() product.Category { return product.CategoryDLC }

func (dlc) Validate(quantity int) error {
	if quantity > MaxDLCUnits {
		return fmt.Errorf("%w: only %d DLC unit per order", ErrQuantityLimitExceeded, MaxDLCUnits)
	}
	return nil
}

func (s dlc) Fulfill(_ context.Context, o *order.Order) (Delivery, error) {
	d := newDelivery(o, s.p)
	d.Message = fmt.Sprintf("DLC activated: %s. It will be added to your library automatically.", s.p.Name)
	return d, nil
}
