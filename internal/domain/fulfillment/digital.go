package fulfillment

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/gamestore/internal/domain/order"
	"github.com/Zhima-Mochi/gamestore/internal/domain/product"
)

type digital struct{ p *product.Product }

func (digital) Category() product.Category { return product.CategoryDigital }

func (digital) Validate(quantity int) error {
	if quantity > MaxDigitalCopies {
		return fmt.Errorf("%w: at most %d digital copies per order", ErrQuantityLimitExceeded, MaxDigitalCopies)
	}
	return nil
}

func (s digital) Fulfill(_ context.Context, o *order.Order) (Delivery, error) {
	d := newDelivery(o, s.p)
	d.ActivationCode = ActivationCode()
	d.Message = fmt.Sprintf("Activation key for %s (%s): %s", s.p.Name, s.p.Platform, d.ActivationCode)
	return d, nil
}

// ActivationCode returns a one-time key of four dash-separated groups of four
// uppercase alphanumerics.
func ActivationCode() string {
	raw := rand.Text()[:16]
	groups := make([]string, 0, 4)
	for i := 0; i < len(raw); i += 4 {
		groups = append(groups, raw[i:i+4])
	}
	return strings.Join(groups, "-")
}
