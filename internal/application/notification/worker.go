package notification

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/gamestore/internal/clock"
	domfulfillment "github.com/Zhima-Mochi/gamestore/internal/domain/fulfillment"
	domnotification "github.com/Zhima-Mochi/gamestore/internal/domain/notification"
	domorder "github.com/Zhima-Mochi/gamestore/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/gamestore/internal/domain/outbox"
	"github.com/Zhima-Mochi/gamestore/internal/observability"
	"github.com/Zhima-Mochi/gamestore/internal/observability/logctx"
	"github.com/google/uuid"
)

const componentNotification = "notification_worker"

// Middleware decorates every handler the worker subscribes.
type Middleware func(domoutbox.Handler) domoutbox.Handler

// Worker turns checkout events into customer notifications.
type Worker struct {
	subscriber domoutbox.Subscriber
	inbox      domnotification.Inbox
	clock      clock.Clock
	wrap       Middleware
	log        observability.Logger

	// Customer per order, learned from order events, for the delivery messages that lack it.
	customers *customerIndex
}

func New(subscriber domoutbox.Subscriber, inbox domnotification.Inbox, clk clock.Clock, wrap Middleware, tel observability.Observability) *Worker {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if wrap == nil {
		wrap = func(h domoutbox.Handler) domoutbox.Handler { return h }
	}
	log := observability.NopLogger()
	if tel != nil {
		log = tel.Logger()
	}
	return &Worker{
		subscriber: subscriber,
		inbox:      inbox,
		clock:      clk,
		wrap:       wrap,
		log:        log.With(observability.F("component", componentNotification)),
		customers:  newCustomerIndex(),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil || w.inbox == nil {
		return
	}
	w.subscriber.Subscribe(domorder.PaidEvent{}.EventName(), w.wrap(w.handleOrderPaid))
	w.subscriber.Subscribe(domorder.PaymentDeclinedEvent{}.EventName(), w.wrap(w.handlePaymentDeclined))
	w.subscriber.Subscribe(domfulfillment.DeliveredEvent{}.EventName(), w.wrap(w.handleDelivered))
}

func (w *Worker) handleOrderPaid(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domorder.PaidEvent)
	if !ok {
		return nil
	}
	w.customers.put(evt.OrderID, evt.Customer)
	w.push(ctx, evt.EventName(), evt.OrderID, evt.Customer,
		fmt.Sprintf("Order %s confirmed: %d item(s), %s paid with %s (transaction %s).",
			evt.OrderID, evt.Units, evt.Total, evt.PaymentMethod, evt.TransactionID))
	return nil
}

func (w *Worker) handlePaymentDeclined(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domorder.PaymentDeclinedEvent)
	if !ok {
		return nil
	}
	w.push(ctx, evt.EventName(), evt.OrderID, evt.Customer,
		fmt.Sprintf("Payment with %s was declined: %s. Your cart is still available.", evt.PaymentMethod, evt.Reason))
	return nil
}

func (w *Worker) handleDelivered(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domfulfillment.DeliveredEvent)
	if !ok {
		return nil
	}
	d := evt.Delivery
	msg := d.Message
	if evt.Failed {
		msg = fmt.Sprintf("We could not complete delivery of %s for order %s: %s. Support will contact you.",
			d.ProductName, d.OrderID, evt.Reason)
	}
	w.push(ctx, evt.EventName(), d.OrderID, w.customers.get(d.OrderID), msg)
	return nil
}

func (w *Worker) push(ctx context.Context, event, orderID, customer, message string) {
	w.inbox.Push(domnotification.Notification{
		ID:        uuid.NewString(),
		Event:     event,
		OrderID:   orderID,
		Customer:  customer,
		Message:   message,
		CreatedAt: w.clock.Now(),
	})
	logctx.FromOr(ctx, w.log).Info("notification_recorded",
		observability.F("order_id", orderID),
		observability.F("event", event),
	)
}
