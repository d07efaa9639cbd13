package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domoutbox "github.com/Zhima-Mochi/gamestore/internal/domain/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct{ name string }

func (e testEvent) EventName() string { return e.name }

func TestBus_FanoutToEverySubscriber(t *testing.T) {
	bus := NewBus(nil)

	var mu sync.Mutex
	got := map[string]int{}
	record := func(tag string) domoutbox.Handler {
		return func(_ context.Context, e domoutbox.Event) error {
			mu.Lock()
			got[tag+":"+e.EventName()]++
			mu.Unlock()
			return nil
		}
	}
	bus.Subscribe("order.paid", record("a"))
	bus.Subscribe("order.paid", record("b"))
	bus.Subscribe("fulfillment.delivered", record("a"))

	ctx := context.Background()
	bus.Start(ctx)
	require.NoError(t, domoutbox.PublishAll(ctx, bus,
		testEvent{"order.paid"},
		testEvent{"fulfillment.delivered"},
		testEvent{"fulfillment.delivered"},
		testEvent{"nobody.listens"},
	))

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(stopCtx))

	assert.Equal(t, map[string]int{
		"a:order.paid":            1,
		"b:order.paid":            1,
		"a:fulfillment.delivered": 2,
	}, got)
}

func TestBus_HandlerFailuresAreContained(t *testing.T) {
	bus := NewBus(nil)
	delivered := make(chan struct{}, 1)

	bus.Subscribe("order.paid", func(context.Context, domoutbox.Event) error { panic("boom") })
	bus.Subscribe("order.paid", func(context.Context, domoutbox.Event) error { return errors.New("nope") })
	bus.Subscribe("order.paid", func(context.Context, domoutbox.Event) error {
		delivered <- struct{}{}
		return nil
	})

	ctx := context.Background()
	bus.Start(ctx)
	require.NoError(t, bus.Publish(ctx, testEvent{"order.paid"}))
	require.NoError(t, bus.Stop(ctx))

	select {
	case <-delivered:
	default:
		t.Fatal("healthy handler did not run")
	}
}

func TestBus_PublishAfterStop(t *testing.T) {
	bus := NewBus(nil)
	require.NoError(t, bus.Stop(context.Background()))

	err := bus.Publish(context.Background(), testEvent{"order.paid"})
	assert.ErrorIs(t, err, ErrBusStopped)
	assert.NoError(t, bus.Publish(context.Background(), nil))
}

func TestBus_PublishNeverBlocksOnStalledDispatcher(t *testing.T) {
	bus := NewBus(nil, WithQueueSize(1))
	entered := make(chan struct{})
	release := make(chan struct{})
	bus.Subscribe("order.paid", func(context.Context, domoutbox.Event) error {
		entered <- struct{}{}
		<-release
		return nil
	})
	bus.Start(context.Background())
	ctx := context.Background()

	require.NoError(t, bus.Publish(ctx, testEvent{"order.paid"}))
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not pick up the first event")
	}
	require.NoError(t, bus.Publish(ctx, testEvent{"order.paid"}))

	published := make(chan error, 1)
	go func() { published <- bus.Publish(ctx, testEvent{"order.paid"}) }()
	select {
	case err := <-published:
		assert.ErrorIs(t, err, ErrQueueFull)
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full queue")
	}

	stopCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bus.Stop(stopCtx), context.DeadlineExceeded)

	close(release)
	<-entered
}
