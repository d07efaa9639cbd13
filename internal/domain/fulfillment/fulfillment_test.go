package fulfillment

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/Zhima-Mochi/gamestore/internal/domain/order"
	"github.com/Zhima-Mochi/gamestore/internal/domain/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(t *testing.T, id, name string, c product.Category, stock int) *product.Product {
	t.Helper()
	p, err := product.New(product.Attributes{ID: id, Name: name, Platform: "PC", Category: c},
		decimal.RequireFromString("100.00"), stock)
	require.NoError(t, err)
	return p
}

func paidOrder(t *testing.T, lines ...order.Line) *order.Order {
	t.Helper()
	o, err := order.New("ORD-0001", "Ana", lines, time.Now())
	require.NoError(t, err)
	require.NoError(t, o.MarkPaid("PAYPAL", "CAP-PP-1", time.Now()))
	return o
}

func line(t *testing.T, p *product.Product, q int) order.Line {
	t.Helper()
	l, err := order.NewLine(p, q)
	require.NoError(t, err)
	return l
}

func TestResolve_CategoryRoundTrip(t *testing.T) {
	for _, c := range product.Categories() {
		s, err := Resolve(newProduct(t, "X1", "Item", c, 1))
		require.NoError(t, err)
		assert.Equal(t, c, s.Category())
	}
}

func TestResolve_RejectsMalformedInput(t *testing.T) {
	p := newProduct(t, "X1", "Item", product.CategoryDLC, 1)
	p.Category = "BUNDLE"

	_, err := Resolve(p)
	assert.ErrorIs(t, err, ErrUnknownCategory)

	_, err = Resolve(nil)
	assert.ErrorIs(t, err, ErrNoProduct)
}

func TestResolve_FreshStrategyPerProduct(t *testing.T) {
	a := newProduct(t, "G002", "FIFA 25", product.CategoryPhysical, 0)
	b := newProduct(t, "G003", "Zelda", product.CategoryPhysical, 8)

	sa, err := Resolve(a)
	require.NoError(t, err)
	sb, err := Resolve(b)
	require.NoError(t, err)

	assert.ErrorIs(t, sa.Validate(1), ErrOutOfStock)
	assert.NoError(t, sb.Validate(1))
}

func TestPhysical_Validate(t *testing.T) {
	const stock = 8
	s, err := Resolve(newProduct(t, "G003", "Zelda", product.CategoryPhysical, stock))
	require.NoError(t, err)

	for q := -1; q <= stock+2; q++ {
		err := s.Validate(q)
		switch {
		case q < 1:
			assert.ErrorIs(t, err, ErrInvalidQuantity, "q=%d", q)
		case q > stock:
			assert.ErrorIs(t, err, ErrInsufficientStock, "q=%d", q)
		default:
			assert.NoError(t, err, "q=%d", q)
		}
	}

	empty, err := Resolve(newProduct(t, "G002", "FIFA 25", product.CategoryPhysical, 0))
	require.NoError(t, err)
	for _, q := range []int{0, 1, 3, 100} {
		assert.ErrorIs(t, empty.Validate(q), ErrOutOfStock)
	}
}

func TestQuantityLimits(t *testing.T) {
	digital, err := Resolve(newProduct(t, "G001", "Elden Ring", product.CategoryDigital, 999))
	require.NoError(t, err)
	dlc, err := Resolve(newProduct(t, "G006", "Phantom Liberty DLC", product.CategoryDLC, 999))
	require.NoError(t, err)
	sub, err := Resolve(newProduct(t, "G007", "Game Pass Ultimate 1 month", product.CategorySubscription, 999))
	require.NoError(t, err)

	for q := 1; q <= 10; q++ {
		if q > MaxDigitalCopies {
			assert.ErrorIs(t, digital.Validate(q), ErrQuantityLimitExceeded)
		} else {
			assert.NoError(t, digital.Validate(q))
		}
		if q > MaxDLCUnits {
			assert.ErrorIs(t, dlc.Validate(q), ErrQuantityLimitExceeded)
		} else {
			assert.NoError(t, dlc.Validate(q))
		}
		assert.NoError(t, sub.Validate(q))
	}
	assert.NoError(t, sub.Validate(1_000_000))
}

func TestPhysical_FulfillDecrementsExactly(t *testing.T) {
	zelda := newProduct(t, "G003", "Zelda", product.CategoryPhysical, 8)
	elden := newProduct(t, "G001", "Elden Ring", product.CategoryDigital, 999)
	o := paidOrder(t, line(t, zelda, 2), line(t, elden, 1))

	s, err := Resolve(zelda)
	require.NoError(t, err)
	d, err := s.Fulfill(context.Background(), o)
	require.NoError(t, err)

	assert.Equal(t, 6, zelda.Stock())
	assert.Equal(t, 6, d.RemainingStock)
	assert.Equal(t, 2, d.Quantity)
	assert.Equal(t, "ORD-0001", d.OrderID)
	assert.Equal(t, 999, elden.Stock())
}

func TestPhysical_FulfillFailsWhenStockDrained(t *testing.T) {
	zelda := newProduct(t, "G003", "Zelda", product.CategoryPhysical, 3)
	o := paidOrder(t, line(t, zelda, 3))

	_, ok := zelda.TryDecrement(2)
	require.True(t, ok)

	s, err := Resolve(zelda)
	require.NoError(t, err)
	d, err := s.Fulfill(context.Background(), o)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 1, zelda.Stock())
	assert.Equal(t, 1, d.RemainingStock)
}

var codePattern = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

func TestDigital_FulfillIssuesActivationCode(t *testing.T) {
	elden := newProduct(t, "G001", "Elden Ring", product.CategoryDigital, 999)
	s, err := Resolve(elden)
	require.NoError(t, err)

	d, err := s.Fulfill(context.Background(), paidOrder(t, line(t, elden, 1)))
	require.NoError(t, err)
	assert.Regexp(t, codePattern, d.ActivationCode)
	assert.Contains(t, d.Message, d.ActivationCode)
	assert.Equal(t, 999, elden.Stock())

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code := ActivationCode()
		assert.Regexp(t, codePattern, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestSubscriptionDays(t *testing.T) {
	cases := map[string]int{
		"Game Pass Ultimate 1 month":  30,
		"Game Pass Ultimate 3 months": 90,
		"PS Plus Extra 12 months":     365,
		"Nintendo Online":             DefaultSubscriptionDays,
	}
	for name, days := range cases {
		assert.Equal(t, days, SubscriptionDays(name), name)
	}

	p := newProduct(t, "G009", "PS Plus Extra 12 months", product.CategorySubscription, 999)
	s, err := Resolve(p)
	require.NoError(t, err)
	d, err := s.Fulfill(context.Background(), paidOrder(t, line(t, p, 1)))
	require.NoError(t, err)
	assert.Equal(t, 365, d.DurationDays)
}

func TestDLC_FulfillDoesNotMutate(t *testing.T) {
	p := newProduct(t, "G006", "Phantom Liberty DLC", product.CategoryDLC, 999)
	s, err := Resolve(p)
	require.NoError(t, err)

	d, err := s.Fulfill(context.Background(), paidOrder(t, line(t, p, 1)))
	require.NoError(t, err)
	assert.Contains(t, d.Message, "DLC activated")
	assert.Equal(t, 999, p.Stock())
}

func TestDeliveredEvent(t *testing.T) {
	at := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	ev := NewDeliveredEvent(Delivery{OrderID: "ORD-0001"}, ErrInsufficientStock, at)
	assert.Equal(t, "fulfillment.delivered", ev.EventName())
	assert.True(t, ev.Failed)
	assert.Equal(t, "insufficient stock", ev.Reason)
	assert.Equal(t, at, ev.OccurredAt)
}
