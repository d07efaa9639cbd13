package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/gamestore/internal/application"
	"github.com/Zhima-Mochi/gamestore/internal/clock"
	domcart "github.com/Zhima-Mochi/gamestore/internal/domain/cart"
	"github.com/Zhima-Mochi/gamestore/internal/domain/fulfillment"
	"github.com/Zhima-Mochi/gamestore/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/gamestore/internal/domain/outbox"
	"github.com/Zhima-Mochi/gamestore/internal/domain/payment"
	"github.com/Zhima-Mochi/gamestore/internal/observability"
	"go.opentelemetry.io/otel/attribute"
)

const (
	checkoutService = "checkout-service"
	useCaseCheckout = "checkout.place_order"

	// DeclinedMessage is shown to the buyer whenever a provider refuses the charge.
	DeclinedMessage = "The payment could not be processed. Try another method."
)

// Config is the slice of store configuration checkout depends on.
type Config interface {
	order.IDGenerator
	CurrencyCode() string
	IsMethodEnabled(m payment.Method) bool
}

// Gateways resolves the adapter for a payment method.
type Gateways interface {
	Resolve(m payment.Method) (payment.Gateway, error)
}

type CheckoutInput struct {
	Cart     *domcart.Cart
	Customer string
	Method   string
}

type CheckoutResult struct {
	OK         bool
	Message    string
	Order      *order.Order
	Payment    payment.Result
	Deliveries []fulfillment.Delivery
	// FulfillmentErrors lists lines whose post-purchase effect failed after payment.
	FulfillmentErrors []string
}

type CheckoutUseCase struct {
	cfg       Config
	gateways  Gateways
	history   order.History
	publisher domoutbox.Publisher
	clock     clock.Clock
	obs       application.Instrumentation

	fulfillments observability.Counter // fulfillments_total{category,outcome}
}

func NewCheckoutUseCase(
	cfg Config,
	gateways Gateways,
	history order.History,
	publisher domoutbox.Publisher,
	clk clock.Clock,
	tel observability.Observability,
) *CheckoutUseCase {
	if clk == nil {
		clk = clock.NewSystem()
	}
	metrics := observability.NopMetrics()
	if tel != nil {
		metrics = tel.Metrics()
	}
	return &CheckoutUseCase{
		cfg:          cfg,
		gateways:     gateways,
		history:      history,
		publisher:    publisher,
		clock:        clk,
		obs:          application.NewInstrumentation(checkoutService, tel),
		fulfillments: metrics.Counter(observability.MFulfillments),
	}
}

// Execute turns the cart into a paid order. Either the charge succeeds and every
// post-purchase effect runs, or nothing changes: the order is discarded and the cart
// is left intact for a retry.
func (uc *CheckoutUseCase) Execute(ctx context.Context, cmd CheckoutInput) (_ *CheckoutResult, err error) {
	ctx, run := uc.obs.Begin(ctx, useCaseCheckout, "Checkout",
		attribute.String("payment.method", cmd.Method),
	)
	run.With(observability.F("method", cmd.Method))
	defer func() { run.End(err) }()
	logger := run.Logger()

	if cmd.Cart == nil || cmd.Cart.IsEmpty() {
		run.Reject("EMPTY_CART")
		return nil, ErrEmptyCart
	}
	customer := strings.TrimSpace(cmd.Customer)
	if customer == "" {
		run.Reject("NO_CUSTOMER")
		return nil, ErrNoCustomer
	}

	o, err := order.New(uc.cfg.NextOrderID(), customer, cmd.Cart.Lines(), uc.clock.Now())
	if err != nil {
		run.Fail("ORDER_BUILD_FAILED")
		return nil, err
	}
	run.With(
		observability.F("order_id", o.ID),
		observability.F("total", o.Total().StringFixed(2)),
	)

	method, err := payment.ParseMethod(cmd.Method)
	if err != nil {
		run.Reject("UNKNOWN_METHOD")
		return nil, err
	}
	if !uc.cfg.IsMethodEnabled(method) {
		run.Reject("METHOD_UNAVAILABLE")
		return nil, fmt.Errorf("%w: %s", ErrMethodUnavailable, method)
	}
	gateway, err := uc.gateways.Resolve(method)
	if err != nil {
		run.Fail("ADAPTER_LOOKUP_FAILED")
		return nil, err
	}

	currency := uc.cfg.CurrencyCode()
	charge, err := gateway.Charge(ctx, o, currency)
	if err != nil || !charge.Succeeded {
		reason := charge.Message
		if err != nil {
			reason = err.Error()
		}
		run.Reject("PAYMENT_DECLINED")
		run.With(observability.F("provider", gateway.Name()), observability.F("decline_reason", reason))
		_ = o.Cancel(reason, uc.clock.Now())
		uc.publish(ctx, logger, order.NewPaymentDeclinedEvent(o, string(method), reason))
		res := &CheckoutResult{Message: DeclinedMessage, Order: o, Payment: charge}
		return res, fmt.Errorf("%w: %s", ErrPaymentDeclined, reason)
	}

	if err = o.MarkPaid(string(method), charge.TransactionID, uc.clock.Now()); err != nil {
		run.Fail("STATE_TRANSITION_FAILED")
		return nil, err
	}
	if err = uc.history.Append(ctx, o); err != nil {
		// The provider has the money but the store lost the order.
		run.Fail("HISTORY_APPEND_FAILED")
		logger.Error("paid_order_not_recorded",
			observability.F("order_id", o.ID),
			observability.F("transaction_id", charge.TransactionID),
			observability.Err(err),
		)
		return nil, err
	}
	run.With(observability.F("transaction_id", charge.TransactionID))

	res := &CheckoutResult{OK: true, Message: charge.Message, Order: o, Payment: charge}
	events := []domoutbox.Event{order.NewPaidEvent(o, currency)}
	events = append(events, uc.fulfill(ctx, logger, o, res)...)
	cmd.Cart.Clear()

	if len(res.FulfillmentErrors) > 0 {
		run.Status = "PAID_FULFILLMENT_INCOMPLETE"
	}
	uc.publish(ctx, logger, events...)
	return res, nil
}

// fulfill runs each line's post-purchase effect in line order. A product appearing
// on several lines is fulfilled once, since its strategy covers every matching line.
func (uc *CheckoutUseCase) fulfill(ctx context.Context, logger observability.Logger, o *order.Order, res *CheckoutResult) []domoutbox.Event {
	var events []domoutbox.Event
	done := make(map[string]bool, len(o.Lines))
	for _, line := range o.Lines {
		if done[line.Product.ID] {
			continue
		}
		done[line.Product.ID] = true

		category := string(line.Product.Category)
		strategy, err := fulfillment.Resolve(line.Product)
		var d fulfillment.Delivery
		if err == nil {
			d, err = strategy.Fulfill(ctx, o)
		}
		if err != nil {
			uc.fulfillments.Add(1, observability.L("category", category), observability.L("outcome", "error"))
			res.FulfillmentErrors = append(res.FulfillmentErrors, fmt.Sprintf("%s: %v", line.Product.ID, err))
			logger.Error("fulfillment_failed",
				observability.F("order_id", o.ID),
				observability.F("product_id", line.Product.ID),
				observability.F("category", category),
				observability.Err(err),
			)
		} else {
			uc.fulfillments.Add(1, observability.L("category", category), observability.L("outcome", "success"))
			res.Deliveries = append(res.Deliveries, d)
			logger.Info("fulfillment_done",
				observability.F("order_id", o.ID),
				observability.F("product_id", line.Product.ID),
				observability.F("category", category),
			)
		}
		if d.OrderID == "" {
			d.OrderID, d.ProductID, d.ProductName, d.Category = o.ID, line.Product.ID, line.Product.Name, line.Product.Category
		}
		events = append(events, fulfillment.NewDeliveredEvent(d, err, uc.clock.Now()))
	}
	return events
}

func (uc *CheckoutUseCase) publish(ctx context.Context, logger observability.Logger, events ...domoutbox.Event) {
	if err := domoutbox.PublishAll(ctx, uc.publisher, events...); err != nil {
		logger.Warn("event_publish_failed", observability.Err(err))
	}
}
