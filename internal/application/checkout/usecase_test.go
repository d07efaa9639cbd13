package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Zhima-Mochi/gamestore/internal/clock"
	domcart "github.com/Zhima-Mochi/gamestore/internal/domain/cart"
	"github.com/Zhima-Mochi/gamestore/internal/domain/fulfillment"
	"github.com/Zhima-Mochi/gamestore/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/gamestore/internal/domain/outbox"
	"github.com/Zhima-Mochi/gamestore/internal/domain/payment"
	"github.com/Zhima-Mochi/gamestore/internal/domain/product"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/config"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu      sync.Mutex
	succeed bool
	calls   int
}

func (g *fakeGateway) Name() string { return "Fake" }

func (g *fakeGateway) Charge(_ context.Context, o *order.Order, currency string) (payment.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if !g.succeed {
		return payment.Result{Provider: "Fake", Message: "card declined"}, nil
	}
	return payment.Result{
		Succeeded:     true,
		TransactionID: fmt.Sprintf("TX-%d", g.calls),
		AmountCharged: o.Total(),
		Currency:      currency,
		Message:       "Payment approved",
		Provider:      "Fake",
	}, nil
}

func (g *fakeGateway) Verify(_ context.Context, txID string) (payment.Verification, error) {
	return payment.Verification{TransactionID: txID, Status: payment.VerificationApproved, Provider: "Fake"}, nil
}

func (g *fakeGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type fakeGateways struct{ gw *fakeGateway }

func (f fakeGateways) Resolve(payment.Method) (payment.Gateway, error) { return f.gw, nil }

type recordingPublisher struct {
	mu     sync.Mutex
	events []domoutbox.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.events))
	for _, e := range p.events {
		names = append(names, e.EventName())
	}
	return names
}

type fixture struct {
	uc      *CheckoutUseCase
	cfg     *config.Store
	gw      *fakeGateway
	history *memory.OrderHistory
	pub     *recordingPublisher
}

func newFixture(t *testing.T, succeed bool) fixture {
	t.Helper()
	cfg := config.New(config.Default())
	gw := &fakeGateway{succeed: succeed}
	history := memory.NewOrderHistory()
	pub := &recordingPublisher{}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	uc := NewCheckoutUseCase(cfg, fakeGateways{gw: gw}, history, pub, clock.NewFixed(at), nil)
	return fixture{uc: uc, cfg: cfg, gw: gw, history: history, pub: pub}
}

func boxed(t *testing.T, id string, stock int) *product.Product {
	t.Helper()
	p, err := product.New(product.Attributes{
		ID: id, Name: "Zelda Boxed", Platform: "Switch", Category: product.CategoryPhysical,
	}, decimal.RequireFromString("100.00"), stock)
	require.NoError(t, err)
	return p
}

func cartWith(t *testing.T, p *product.Product, q int) *domcart.Cart {
	t.Helper()
	c := domcart.New()
	_, _, err := c.Add(p, q)
	require.NoError(t, err)
	return c
}

func TestCheckout_SuccessfulPurchase(t *testing.T) {
	f := newFixture(t, true)
	p := boxed(t, "P100", 8)
	c := cartWith(t, p, 2)

	res, err := f.uc.Execute(context.Background(), CheckoutInput{Cart: c, Customer: "Ana", Method: "yape"})
	require.NoError(t, err)
	require.True(t, res.OK)

	assert.True(t, res.Order.Total().Equal(decimal.RequireFromString("200.00")))
	assert.Equal(t, order.StatusPaid, res.Order.Status)
	assert.Equal(t, "YAPE", res.Order.PaymentMethod)
	assert.Equal(t, "TX-1", res.Order.TransactionID)
	assert.Equal(t, 6, p.Stock())
	assert.True(t, c.IsEmpty())
	assert.Empty(t, res.FulfillmentErrors)
	require.Len(t, res.Deliveries, 1)
	assert.Equal(t, 6, res.Deliveries[0].RemainingStock)

	orders, err := f.history.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, res.Order.ID, orders[0].ID)
	assert.Equal(t, "ORD-0001", res.Order.ID)

	assert.Equal(t, []string{"order.paid", "fulfillment.delivered"}, f.pub.Names())
}

func TestCheckout_DeclinedLeavesEverythingUnchanged(t *testing.T) {
	f := newFixture(t, false)
	p := boxed(t, "P100", 8)
	c := cartWith(t, p, 2)

	res, err := f.uc.Execute(context.Background(), CheckoutInput{Cart: c, Customer: "Ana", Method: "PAYPAL"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPaymentDeclined)
	assert.Equal(t, KindPaymentDeclined, Classify(err))
	require.NotNil(t, res)
	assert.False(t, res.OK)
	assert.Equal(t, DeclinedMessage, res.Message)
	assert.Equal(t, order.StatusCancelled, res.Order.Status)

	assert.Equal(t, 8, p.Stock())
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.QuantityOf("P100"))
	assert.Equal(t, 0, f.history.Len())
	assert.Equal(t, []string{"order.payment_declined"}, f.pub.Names())
}

func TestCheckout_DisabledMethodNeverReachesAdapter(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.cfg.Set("payment_methods", "PAYPAL,CULQI"))
	p := boxed(t, "P100", 8)
	c := cartWith(t, p, 1)

	_, err := f.uc.Execute(context.Background(), CheckoutInput{Cart: c, Customer: "Ana", Method: "YAPE"})
	assert.ErrorIs(t, err, ErrMethodUnavailable)
	assert.Equal(t, KindPrecondition, Classify(err))
	assert.Equal(t, 0, f.gw.Calls())
	assert.Equal(t, 8, p.Stock())
	assert.Equal(t, 1, c.Len())
}

func TestCheckout_UnknownMethod(t *testing.T) {
	f := newFixture(t, true)
	c := cartWith(t, boxed(t, "P100", 8), 1)

	_, err := f.uc.Execute(context.Background(), CheckoutInput{Cart: c, Customer: "Ana", Method: "BITCOIN"})
	assert.ErrorIs(t, err, payment.ErrUnknownMethod)
	assert.Equal(t, KindLookup, Classify(err))
	assert.Equal(t, 0, f.gw.Calls())
}

func TestCheckout_Preconditions(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.uc.Execute(context.Background(), CheckoutInput{Cart: domcart.New(), Customer: "Ana", Method: "YAPE"})
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = f.uc.Execute(context.Background(), CheckoutInput{Customer: "Ana", Method: "YAPE"})
	assert.ErrorIs(t, err, ErrEmptyCart)

	c := cartWith(t, boxed(t, "P100", 8), 1)
	_, err = f.uc.Execute(context.Background(), CheckoutInput{Cart: c, Customer: "  ", Method: "YAPE"})
	assert.ErrorIs(t, err, ErrNoCustomer)

	assert.Equal(t, 0, f.gw.Calls())
	assert.Equal(t, 0, f.history.Len())
}

func TestCheckout_FulfillmentFailureKeepsOrderPaid(t *testing.T) {
	f := newFixture(t, true)
	p := boxed(t, "P100", 3)
	c := cartWith(t, p, 3)
	// Another buyer drains the stock between add-to-cart and checkout.
	_, ok := p.TryDecrement(2)
	require.True(t, ok)

	res, err := f.uc.Execute(context.Background(), CheckoutInput{Cart: c, Customer: "Ana", Method: "CULQI"})
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, res.Order.Status)
	assert.Equal(t, 1, p.Stock())
	require.Len(t, res.FulfillmentErrors, 1)
	assert.Contains(t, res.FulfillmentErrors[0], "P100")
	assert.Empty(t, res.Deliveries)
	assert.Equal(t, 1, f.history.Len())
}

func TestCheckout_MixedCartFulfillsEveryLine(t *testing.T) {
	f := newFixture(t, true)
	repo, err := memory.NewDemoCatalog()
	require.NoError(t, err)
	ctx := context.Background()

	c := domcart.New()
	for _, item := range []struct {
		id string
		q  int
	}{{"G003", 1}, {"G001", 2}, {"G006", 1}, {"G009", 1}} {
		p, err := repo.FindByID(ctx, item.id)
		require.NoError(t, err)
		_, _, err = c.Add(p, item.q)
		require.NoError(t, err)
	}

	res, err := f.uc.Execute(ctx, CheckoutInput{Cart: c, Customer: "Luis", Method: "PAYPAL"})
	require.NoError(t, err)
	require.Len(t, res.Deliveries, 4)

	byCategory := map[product.Category]fulfillment.Delivery{}
	for _, d := range res.Deliveries {
		byCategory[d.Category] = d
	}
	assert.Equal(t, 7, byCategory[product.CategoryPhysical].RemainingStock)
	assert.Len(t, byCategory[product.CategoryDigital].ActivationCode, 19)
	assert.Equal(t, 365, byCategory[product.CategorySubscription].DurationDays)
	assert.NotEmpty(t, byCategory[product.CategoryDLC].Message)
}

func TestCheckout_OrderIDsAreNeverReused(t *testing.T) {
	f := newFixture(t, false)
	p := boxed(t, "P100", 8)
	c := cartWith(t, p, 1)

	first, err := f.uc.Execute(context.Background(), CheckoutInput{Cart: c, Customer: "Ana", Method: "YAPE"})
	require.Error(t, err)

	f.gw.mu.Lock()
	f.gw.succeed = true
	f.gw.mu.Unlock()
	second, err := f.uc.Execute(context.Background(), CheckoutInput{Cart: c, Customer: "Ana", Method: "YAPE"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Order.ID, second.Order.ID)
	assert.Equal(t, 7, p.Stock())
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{nil, ""},
		{fmt.Errorf("wrap: %w", product.ErrNotFound), KindLookup},
		{fulfillment.ErrQuantityLimitExceeded, KindValidation},
		{fulfillment.ErrOutOfStock, KindValidation},
		{ErrEmptyCart, KindPrecondition},
		{fmt.Errorf("%w: x", ErrPaymentDeclined), KindPaymentDeclined},
		{config.ErrUnknownKey, KindLookup},
		{fmt.Errorf("verify: %w", payment.ErrProviderUnavailable), KindUnavailable},
		{fmt.Errorf("%w: %w", ErrPaymentDeclined, payment.ErrProviderUnavailable), KindPaymentDeclined},
		{errors.New("boom"), KindInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.err), "%v", tc.err)
	}
}
