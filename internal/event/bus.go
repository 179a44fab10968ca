package event

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/deckstorm/internal/event/topic"
)

// Handler processes one event.
type Handler func(ctx context.Context, env Envelope) error

// Stats are cumulative bus counters.
type Stats struct {
	EventsPublished   uint64
	EventsDelivered   uint64
	HandlerErrors     uint64
	HandlerPanics     uint64
	ActiveSubscribers int
}

type subscription struct {
	id      string
	pattern topic.Topic
	handler Handler
}

// Bus is a topic-based publish/subscribe bus. It is safe for concurrent
// use.
type Bus struct {
	mu     sync.RWMutex
	subs   []*subscription
	closed bool

	wg sync.WaitGroup

	logger  *slog.Logger
	onError func(error)

	published atomic.Uint64
	delivered atomic.Uint64
	errs      atomic.Uint64
	panics    atomic.Uint64
}

// NewBus creates a bus.
func NewBus(opts ...BusOption) *Bus {
	cfg := defaultBusConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Bus{
		logger:  cfg.logger.With("component", "event"),
		onError: cfg.errorHandler,
	}
}

// Subscribe registers handler for events whose topic matches pattern and
// returns a function that removes the subscription.
func (b *Bus) Subscribe(pattern topic.Topic, handler Handler) (func(), error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !pattern.Valid() {
		return nil, ErrInvalidTopic
	}

	sub := &subscription{id: uuid.NewString(), pattern: pattern, handler: handler}
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.subs = slices.DeleteFunc(b.subs, func(s *subscription) bool { return s == sub })
		})
	}, nil
}

// Publish delivers ev to every matching handler on the calling goroutine,
// in subscription order. ev must be an Event[T] or an Envelope.
// Handler failures are reported through the error handler and logger and
// do not stop delivery to other handlers.
func (b *Bus) Publish(ctx context.Context, ev any) error {
	env, subs, err := b.prepare(ev)
	if err != nil {
		return err
	}
	b.deliver(ctx, env, subs)
	return nil
}

// PublishAsync delivers ev on a new goroutine. Close waits for it.
func (b *Bus) PublishAsync(ctx context.Context, ev any) error {
	env, subs, err := b.prepare(ev)
	if err != nil {
		return err
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.deliver(context.WithoutCancel(ctx), env, subs)
	}()
	return nil
}

func (b *Bus) prepare(ev any) (Envelope, []*subscription, error) {
	env, ok := ToEnvelope(ev)
	if !ok || !env.Topic.Valid() || env.Topic.IsPattern() {
		return Envelope{}, nil, ErrInvalidEvent
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return Envelope{}, nil, ErrBusClosed
	}

	var subs []*subscription
	for _, s := range b.subs {
		if topic.Match(s.pattern, env.Topic) {
			subs = append(subs, s)
		}
	}
	b.published.Add(1)
	return env, subs, nil
}

func (b *Bus) deliver(ctx context.Context, env Envelope, subs []*subscription) {
	for _, s := range subs {
		if err := b.call(ctx, env, s); err != nil {
			b.report(err)
			continue
		}
		b.delivered.Add(1)
	}
}

func (b *Bus) call(ctx context.Context, env Envelope, s *subscription) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			err = &PanicError{SubscriptionID: s.id, Topic: env.Topic.String(), Value: r}
		}
	}()

	if err := s.handler(ctx, env); err != nil {
		b.errs.Add(1)
		return &HandlerError{SubscriptionID: s.id, Topic: env.Topic.String(), Err: err}
	}
	return nil
}

func (b *Bus) report(err error) {
	if errors.Is(err, ErrHandlerPanic) {
		b.logger.Error("event handler panicked", "error", err)
	} else {
		b.logger.Warn("event handler failed", "error", err)
	}
	if b.onError != nil {
		b.onError(err)
	}
}

// Stats returns current bus statistics.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	active := len(b.subs)
	b.mu.RUnlock()

	return Stats{
		EventsPublished:   b.published.Load(),
		EventsDelivered:   b.delivered.Load(),
		HandlerErrors:     b.errs.Load(),
		HandlerPanics:     b.panics.Load(),
		ActiveSubscribers: active,
	}
}

// Close rejects further publishing and waits for async deliveries or ctx.
func (b *Bus) Close(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
