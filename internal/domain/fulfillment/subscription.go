package fulfillment

import (
	"context"
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/gamestore/internal/domain/order"
	"github.com/Zhima-Mochi/gamestore/internal/domain/product"
)

const DefaultSubscriptionDays = 30

// Longest plan names first so "12 months" never resolves through a shorter match.
var subscriptionPlans = []struct {
	match string
	days  int
}{
	{"12 months", 365},
	{"3 months", 90},
	{"1 month", 30},
}

type subscription struct{ p *product.Product }

func (subscription) Category() product.Category { return product.CategorySubscription }

func (subscription) Validate(int) error { return nil }

func (s subscription) Fulfill(_ context.Context, o *order.Order) (Delivery, error) {
	d := newDelivery(o, s.p)
	d.DurationDays = SubscriptionDays(s.p.Name)
	d.Message = fmt.Sprintf("Subscription activated: %s. %d days of premium access.", s.p.Name, d.DurationDays)
	return d, nil
}

// SubscriptionDays resolves the plan length from the product name.
func SubscriptionDays(name string) int {
	lower := strings.ToLower(name)
	for _, plan := range subscriptionPlans {
		if strings.Contains(lower, plan.match) {
			return plan.days
		}
	}
	return DefaultSubscriptionDays
}
