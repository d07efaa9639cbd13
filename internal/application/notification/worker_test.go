package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Zhima-Mochi/gamestore/internal/clock"
	"github.com/Zhima-Mochi/gamestore/internal/domain/fulfillment"
	domorder "github.com/Zhima-Mochi/gamestore/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/gamestore/internal/domain/outbox"
	"github.com/Zhima-Mochi/gamestore/internal/domain/product"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorker_RecordsCheckoutEvents(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	bus := outbox.NewBus(nil)
	inbox := memory.NewNotificationInbox(10)

	wrapped := 0
	wrap := func(h domoutbox.Handler) domoutbox.Handler {
		wrapped++
		return h
	}
	New(bus, inbox, clock.NewFixed(at), wrap, nil).Start()
	assert.Equal(t, 3, wrapped)

	ctx := context.Background()
	bus.Start(ctx)
	require.NoError(t, domoutbox.PublishAll(ctx, bus,
		domorder.PaidEvent{
			EventID: "e1", OrderID: "ORD-0001", Customer: "Ana", PaymentMethod: "YAPE",
			TransactionID: "YAPE-123456", Total: "200.00 PEN", Units: 2,
		},
		fulfillment.NewDeliveredEvent(fulfillment.Delivery{
			OrderID: "ORD-0001", ProductID: "G003", ProductName: "The Legend of Zelda",
			Category: product.CategoryPhysical, Message: "Stock updated",
		}, nil, at),
		fulfillment.NewDeliveredEvent(fulfillment.Delivery{
			OrderID: "ORD-0001", ProductID: "G010", ProductName: "Spider-Man 2",
		}, errors.New("insufficient stock"), at),
		domorder.PaymentDeclinedEvent{
			EventID: "e2", OrderID: "ORD-0002", Customer: "Luis", PaymentMethod: "PAYPAL", Reason: "card declined",
		},
	))
	require.NoError(t, bus.Stop(ctx))

	ana := inbox.List("Ana")
	require.Len(t, ana, 3)
	assert.Equal(t, "order.paid", ana[0].Event)
	assert.Contains(t, ana[0].Message, "200.00 PEN")
	assert.Equal(t, at, ana[0].CreatedAt)
	assert.Equal(t, "Stock updated", ana[1].Message)
	assert.Contains(t, ana[2].Message, "Spider-Man 2")
	assert.Contains(t, ana[2].Message, "insufficient stock")

	luis := inbox.List("Luis")
	require.Len(t, luis, 1)
	assert.Equal(t, "order.payment_declined", luis[0].Event)
	assert.Contains(t, luis[0].Message, "card declined")
}

func TestWorker_IgnoresForeignPayloads(t *testing.T) {
	inbox := memory.NewNotificationInbox(10)
	w := New(nil, inbox, nil, nil, nil)

	require.NoError(t, w.handleOrderPaid(context.Background(), domorder.PaymentDeclinedEvent{}))
	require.NoError(t, w.handleDelivered(context.Background(), domorder.PaidEvent{}))
	assert.Zero(t, inbox.Len())
}
