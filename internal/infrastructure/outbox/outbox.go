package outbox

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	domoutbox "github.com/Zhima-Mochi/gamestore/internal/domain/outbox"
	"github.com/Zhima-Mochi/gamestore/internal/observability"
	"github.com/Zhima-Mochi/gamestore/internal/observability/logctx"
)

var (
	ErrBusStopped = errors.New("outbox: bus stopped")
	ErrQueueFull  = errors.New("outbox: queue full")
)

const (
	componentOutbox    = "outbox"
	defaultQueueSize   = 1024
	defaultConcurrency = 8
	handlerTimeout     = 30 * time.Second
)

// Bus is an in-memory, non-durable event bus. Events are dispatched from a single loop
// and fanned out to handlers with a concurrency cap.
type Bus struct {
	mu          sync.RWMutex
	subs        map[string][]domoutbox.Handler
	queue       chan domoutbox.Event
	startOnce   sync.Once
	stopOnce    sync.Once
	stopped     bool
	done        chan struct{}
	concurrency int
	log         observability.Logger
	events      observability.Counter
}

type Option func(*options)

type options struct {
	queueSize   int
	concurrency int
}

// WithQueueSize bounds the number of events waiting for dispatch.
func WithQueueSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.queueSize = n
		}
	}
}

// WithConcurrency caps how many handlers of one event run at once.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

func NewBus(tel observability.Observability, opts ...Option) *Bus {
	if tel == nil {
		tel = observability.Nop()
	}
	o := options{queueSize: defaultQueueSize, concurrency: defaultConcurrency}
	for _, opt := range opts {
		opt(&o)
	}
	return &Bus{
		subs:        make(map[string][]domoutbox.Handler),
		queue:       make(chan domoutbox.Event, o.queueSize),
		done:        make(chan struct{}),
		concurrency: o.concurrency,
		log:         tel.Logger().With(observability.F("component", componentOutbox)),
		events:      tel.Metrics().Counter(observability.MEvents),
	}
}

func (b *Bus) Subscribe(eventName string, h domoutbox.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventName] = append(b.subs[eventName], h)
}

func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		go b.dispatchLoop(context.WithoutCancel(ctx))
		logctx.FromOr(ctx, b.log).Info("event_bus_started")
	})
}

// Stop refuses new events, drains the queue and waits for in-flight handlers
// until ctx expires.
func (b *Bus) Stop(ctx context.Context) error {
	var err error
	b.stopOnce.Do(func() {
		b.mu.Lock()
		b.stopped = true
		close(b.queue)
		b.mu.Unlock()

		b.startOnce.Do(func() { close(b.done) })

		select {
		case <-b.done:
		case <-ctx.Done():
			err = ctx.Err()
		}
		logctx.FromOr(ctx, b.log).Info("event_bus_stopped", observability.F("drained", err == nil))
	})
	return err
}

// Publish enqueues e without blocking. A full queue drops the event and reports
// ErrQueueFull, so a stalled dispatcher never holds up the publisher or Stop.
func (b *Bus) Publish(ctx context.Context, e domoutbox.Event) error {
	if e == nil {
		return nil
	}
	logger := logctx.FromOr(ctx, b.log).With(observability.F("event", e.EventName()))
	if err := ctx.Err(); err != nil {
		b.events.Add(1, observability.L("event", e.EventName()), observability.L("outcome", "aborted"))
		logger.Warn("event_enqueue_aborted", observability.Err(err))
		return err
	}

	// The read lock only guards against Stop closing the queue mid-send; the send itself never waits.
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.stopped {
		logger.Warn("event_enqueue_rejected", observability.Err(ErrBusStopped))
		return ErrBusStopped
	}

	select {
	case b.queue <- e:
		b.events.Add(1, observability.L("event", e.EventName()), observability.L("outcome", "enqueued"))
		logger.Debug("event_enqueued")
		return nil
	default:
		b.events.Add(1, observability.L("event", e.EventName()), observability.L("outcome", "dropped"))
		logger.Warn("event_enqueue_dropped",
			observability.Err(ErrQueueFull),
			observability.F("queue_size", cap(b.queue)),
		)
		return ErrQueueFull
	}
}

func (b *Bus) dispatchLoop(ctx context.Context) {
	defer close(b.done)
	for e := range b.queue {
		b.fanout(ctx, e)
	}
}

func (b *Bus) fanout(ctx context.Context, e domoutbox.Event) {
	name := e.EventName()

	b.mu.RLock()
	handlers := append([]domoutbox.Handler(nil), b.subs[name]...)
	b.mu.RUnlock()

	baseLogger := b.log.With(observability.F("event", name))
	if len(handlers) == 0 {
		baseLogger.Debug("event_dropped_no_subscriber")
		return
	}

	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup

	for _, h := range handlers {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					b.events.Add(1, observability.L("event", name), observability.L("outcome", "panic"))
					baseLogger.Error("event_handler_panic",
						observability.F("panic", r),
						observability.F("stack", string(debug.Stack())),
					)
				}
				<-sem
				wg.Done()
			}()

			hctx, cancel := context.WithTimeout(ctx, handlerTimeout)
			defer cancel()
			hctx = logctx.With(hctx, baseLogger)
			if err := h(hctx, e); err != nil {
				b.events.Add(1, observability.L("event", name), observability.L("outcome", "handler_error"))
				baseLogger.Warn("event_handler_error",
					observability.Err(err),
				)
				return
			}
			b.events.Add(1, observability.L("event", name), observability.L("outcome", "handled"))
		}()
	}

	wg.Wait()

	baseLogger.Debug("event_fanned_out",
		observability.F("handlers", len(handlers)),
	)
}
