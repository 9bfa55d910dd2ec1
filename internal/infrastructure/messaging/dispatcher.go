package messaging

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DISPATCHER
// ══════════════════════════════════════════════════════════════════════════════

// Dispatcher routes events from the bus to registered handlers with
// middleware, retry and a dead letter queue. The leaderboard rebuild
// handler rides on it: a rebuild that keeps failing lands in the DLQ
// instead of blocking further awards.
type Dispatcher struct {
	eventBus    shared.EventBus
	handlers    map[shared.EventType][]HandlerRegistration
	middlewares []Middleware
	retryConfig RetryConfig
	deadLetterQ *DeadLetterQueue
	logger      *slog.Logger
	mu          sync.RWMutex
}

// HandlerRegistration contains handler metadata.
type HandlerRegistration struct {
	Name       string
	Handler    shared.EventHandler
	MaxRetries int
	Timeout    time.Duration
}

// DispatcherConfig contains configuration for the Dispatcher.
type DispatcherConfig struct {
	// EventBus is the underlying event bus.
	EventBus shared.EventBus

	// RetryConfig configures retry behavior.
	RetryConfig RetryConfig

	// DeadLetterQueueSize is the max size of the DLQ (0 disables it).
	DeadLetterQueueSize int

	// Logger for structured logging.
	Logger *slog.Logger
}

// RetryConfig contains retry configuration.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts.
	MaxRetries int

	// InitialBackoff is the initial wait between retries.
	InitialBackoff time.Duration

	// MaxBackoff is the maximum wait between retries.
	MaxBackoff time.Duration

	// BackoffMultiplier is the factor for exponential backoff.
	BackoffMultiplier float64
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// DefaultDispatcherConfig returns sensible defaults.
func DefaultDispatcherConfig(eventBus shared.EventBus) DispatcherConfig {
	return DispatcherConfig{
		EventBus:            eventBus,
		RetryConfig:         DefaultRetryConfig(),
		DeadLetterQueueSize: 1000,
	}
}

// NewDispatcher creates a new event dispatcher.
func NewDispatcher(config DispatcherConfig) *Dispatcher {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	d := &Dispatcher{
		eventBus:    config.EventBus,
		handlers:    make(map[shared.EventType][]HandlerRegistration),
		middlewares: make([]Middleware, 0),
		retryConfig: config.RetryConfig,
		logger:      config.Logger,
	}

	if config.DeadLetterQueueSize > 0 {
		d.deadLetterQ = NewDeadLetterQueue(config.DeadLetterQueueSize)
	}

	return d
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER REGISTRATION
// ══════════════════════════════════════════════════════════════════════════════

// RegisterHandler registers a handler for an event type.
func (d *Dispatcher) RegisterHandler(eventType shared.EventType, reg HandlerRegistration) error {
	if reg.Handler == nil {
		return errors.New("handler cannot be nil")
	}
	if reg.Name == "" {
		return errors.New("handler name cannot be empty")
	}
	if reg.MaxRetries <= 0 {
		reg.MaxRetries = d.retryConfig.MaxRetries
	}
	if reg.Timeout <= 0 {
		reg.Timeout = 30 * time.Second
	}

	d.mu.Lock()
	d.handlers[eventType] = append(d.handlers[eventType], reg)
	d.mu.Unlock()

	d.logger.Debug("registered handler", "event_type", eventType, "handler", reg.Name)
	return nil
}

// Register is a convenience method for simple handler registration.
func (d *Dispatcher) Register(eventType shared.EventType, name string, handler shared.EventHandler) error {
	return d.RegisterHandler(eventType, HandlerRegistration{
		Name:    name,
		Handler: handler,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// Middleware wraps handler execution.
type Middleware func(shared.EventHandler) shared.EventHandler

// Use adds middleware to the dispatcher. Middleware applies to handlers
// registered before and after the call.
func (d *Dispatcher) Use(middleware Middleware) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.middlewares = append(d.middlewares, middleware)
}

// RecoveryMiddleware recovers from panics in handlers.
func RecoveryMiddleware(logger *slog.Logger) Middleware {
	return func(next shared.EventHandler) shared.EventHandler {
		return func(event shared.Event) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("handler panic",
						"event_type", event.EventType(),
						"panic", r,
						"stack", string(debug.Stack()),
					)
					err = fmt.Errorf("handler panic: %v", r)
				}
			}()
			return next(event)
		}
	}
}

// LoggingMiddleware logs handler execution.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next shared.EventHandler) shared.EventHandler {
		return func(event shared.Event) error {
			start := time.Now()
			err := next(event)
			duration := time.Since(start)

			if err != nil {
				logger.Error("event handler failed",
					"event_type", event.EventType(),
					"aggregate_id", event.AggregateID(),
					"duration", duration,
					"error", err,
				)
			} else {
				logger.Debug("event handled",
					"event_type", event.EventType(),
					"aggregate_id", event.AggregateID(),
					"duration", duration,
				)
			}
			return err
		}
	}
}

// TimeoutMiddleware bounds handler execution time.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next shared.EventHandler) shared.EventHandler {
		return func(event shared.Event) error {
			done := make(chan error, 1)
			go func() {
				done <- next(event)
			}()

			select {
			case err := <-done:
				return err
			case <-time.After(timeout):
				return fmt.Errorf("handler timed out after %s", timeout)
			}
		}
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENT DISPATCHING
// ══════════════════════════════════════════════════════════════════════════════

// Start subscribes the dispatcher to the underlying bus.
func (d *Dispatcher) Start() error {
	if d.eventBus == nil {
		return errors.New("event bus is required")
	}
	return d.eventBus.SubscribeAll(d.dispatch)
}

// Dispatch manually dispatches an event to registered handlers.
func (d *Dispatcher) Dispatch(event shared.Event) error {
	return d.dispatch(event)
}

func (d *Dispatcher) dispatch(event shared.Event) error {
	d.mu.RLock()
	regs := append([]HandlerRegistration(nil), d.handlers[event.EventType()]...)
	middlewares := append([]Middleware(nil), d.middlewares...)
	d.mu.RUnlock()

	var firstErr error
	for _, reg := range regs {
		if err := d.executeWithRetry(event, reg, middlewares); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if d.deadLetterQ != nil {
				d.deadLetterQ.Add(DeadLetter{
					Event:       event,
					HandlerName: reg.Name,
					Error:       err.Error(),
					FailedAt:    time.Now().UTC(),
				})
			}
		}
	}
	return firstErr
}

// executeWithRetry runs a handler with middleware and exponential backoff.
func (d *Dispatcher) executeWithRetry(event shared.Event, reg HandlerRegistration, middlewares []Middleware) error {
	handler := reg.Handler
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}

	backoff := d.retryConfig.InitialBackoff
	var lastErr error

	for attempt := 0; attempt <= reg.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff = time.Duration(float64(backoff) * d.retryConfig.BackoffMultiplier)
			if backoff > d.retryConfig.MaxBackoff {
				backoff = d.retryConfig.MaxBackoff
			}
		}

		lastErr = handler(event)
		if lastErr == nil {
			return nil
		}

		d.logger.Warn("handler attempt failed",
			"handler", reg.Name,
			"event_type", event.EventType(),
			"attempt", attempt+1,
			"error", lastErr,
		)
	}

	return fmt.Errorf("handler %s exhausted %d retries: %w", reg.Name, reg.MaxRetries, lastErr)
}

// ══════════════════════════════════════════════════════════════════════════════
// DEAD LETTER QUEUE
// ══════════════════════════════════════════════════════════════════════════════

// DeadLetter is a failed event with failure context.
type DeadLetter struct {
	Event       shared.Event
	HandlerName string
	Error       string
	FailedAt    time.Time
}

// DeadLetterQueue is a bounded in-memory queue of failed events.
// When full, the oldest entry is dropped.
type DeadLetterQueue struct {
	mu      sync.Mutex
	entries []DeadLetter
	maxSize int
}

// NewDeadLetterQueue creates a new DeadLetterQueue.
func NewDeadLetterQueue(maxSize int) *DeadLetterQueue {
	return &DeadLetterQueue{maxSize: maxSize}
}

// Add appends a failed event, evicting the oldest when full.
func (q *DeadLetterQueue) Add(letter DeadLetter) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) >= q.maxSize {
		q.entries = q.entries[1:]
	}
	q.entries = append(q.entries, letter)
}

// Drain returns and clears all failed events.
func (q *DeadLetterQueue) Drain() []DeadLetter {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries := q.entries
	q.entries = nil
	return entries
}

// Len returns the number of queued failed events.
func (q *DeadLetterQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// DeadLetters returns the dispatcher's DLQ (nil if disabled).
func (d *Dispatcher) DeadLetters() *DeadLetterQueue {
	return d.deadLetterQ
}
