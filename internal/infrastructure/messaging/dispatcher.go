package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
	"github.com/skillforge/skillforge-learning-hub/pkg/logger"
	"github.com/skillforge/skillforge-learning-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// DISPATCHER
// Wraps subscriber registration on the event bus with names, timeouts
// and retry, so the worker binary can register projections declaratively.
// ══════════════════════════════════════════════════════════════════════════════

// Registration describes one named event subscriber.
type Registration struct {
	// Name identifies the subscriber in logs.
	Name string

	// EventType is the event type the subscriber listens for.
	EventType shared.EventType

	// Handler processes the event.
	Handler shared.EventHandler

	// MaxRetries is how many times a failing handler is retried.
	// Zero means no retries.
	MaxRetries int

	// Timeout bounds one handler invocation including retries.
	// Zero means DefaultHandlerTimeout.
	Timeout time.Duration
}

// DefaultHandlerTimeout bounds a single subscriber invocation.
const DefaultHandlerTimeout = 30 * time.Second

// Dispatcher registers subscribers on a bus with retry and timeout
// wrapping. Failed events that exhaust their retries are kept in a
// bounded dead letter list for inspection.
type Dispatcher struct {
	bus shared.EventSubscriber
	log *logger.Logger

	mu         sync.Mutex
	deadLetter []DeadEvent
	maxDead    int
}

// DeadEvent is an event whose subscriber exhausted all retries.
type DeadEvent struct {
	Subscriber string
	EventType  shared.EventType
	Aggregate  string
	FailedAt   time.Time
	Err        string
}

// NewDispatcher creates a new dispatcher over the given bus.
func NewDispatcher(bus shared.EventSubscriber, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Default()
	}
	return &Dispatcher{
		bus:     bus,
		log:     log.With(logger.String("component", "dispatcher")),
		maxDead: 1000,
	}
}

// Register subscribes the registration's handler, wrapped with timeout
// and retry.
func (d *Dispatcher) Register(reg Registration) error {
	if reg.Handler == nil {
		return ErrNilHandler
	}
	if reg.Name == "" {
		reg.Name = string(reg.EventType)
	}
	if reg.Timeout <= 0 {
		reg.Timeout = DefaultHandlerTimeout
	}

	wrapped := d.wrap(reg)
	if err := d.bus.Subscribe(reg.EventType, wrapped); err != nil {
		return fmt.Errorf("failed to register subscriber %q: %w", reg.Name, err)
	}

	d.log.Info("registered subscriber",
		logger.String("subscriber", reg.Name),
		logger.String("event_type", string(reg.EventType)),
	)
	return nil
}

// RegisterAll registers every registration, stopping at the first error.
func (d *Dispatcher) RegisterAll(regs ...Registration) error {
	for _, reg := range regs {
		if err := d.Register(reg); err != nil {
			return err
		}
	}
	return nil
}

// wrap produces the bus-facing handler with retry, timeout and dead
// letter accounting.
func (d *Dispatcher) wrap(reg Registration) shared.EventHandler {
	return func(event shared.Event) error {
		ctx, cancel := context.WithTimeout(context.Background(), reg.Timeout)
		defer cancel()

		err := retry.Do(ctx, func(ctx context.Context) error {
			return reg.Handler(event)
		},
			retry.WithMaxAttempts(reg.MaxRetries+1),
			retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
				d.log.Warn("subscriber retrying",
					logger.String("subscriber", reg.Name),
					logger.String("event_type", string(event.EventType())),
					logger.Int("attempt", attempt),
					logger.Duration("delay", delay),
					logger.Err(err),
				)
			}),
		)
		if err != nil {
			d.recordDead(reg.Name, event, err)
			return fmt.Errorf("subscriber %q failed: %w", reg.Name, err)
		}
		return nil
	}
}

func (d *Dispatcher) recordDead(name string, event shared.Event, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.deadLetter) >= d.maxDead {
		// Drop the oldest entry; the list is diagnostic, not durable.
		d.deadLetter = d.deadLetter[1:]
	}
	d.deadLetter = append(d.deadLetter, DeadEvent{
		Subscriber: name,
		EventType:  event.EventType(),
		Aggregate:  event.AggregateID(),
		FailedAt:   time.Now(),
		Err:        err.Error(),
	})
}

// DeadEvents returns a copy of the accumulated dead letter list.
func (d *Dispatcher) DeadEvents() []DeadEvent {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]DeadEvent, len(d.deadLetter))
	copy(out, d.deadLetter)
	return out
}
