// Package orchestrator fans committed events out to the registered services.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"

	"studio/internal/events"
	"studio/internal/metrics"
	"studio/internal/services"
)

// Orchestrator coordinates multiple services to process events. It satisfies
// events.Publisher.
type Orchestrator struct {
	services []services.Service

	mu      sync.Mutex
	queue   chan events.Event
	started bool
	closed  bool
	done    chan struct{}
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithQueue makes Publish enqueue events for Run instead of processing them
// on the caller's goroutine.
func WithQueue(size int) Option {
	return func(o *Orchestrator) {
		o.queue = make(chan events.Event, size)
		o.done = make(chan struct{})
	}
}

// New creates a new Orchestrator with the given services
func New(services []services.Service, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		services: services,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Publish hands e to the services, directly or through the queue.
func (o *Orchestrator) Publish(ctx context.Context, e events.Event) {
	if o.queue == nil {
		o.Process(ctx, &e)
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		slog.Warn("Orchestrator closed, dropping event", "event_id", e.ID, "type", e.Type)
		return
	}
	select {
	case o.queue <- e:
	case <-ctx.Done():
		slog.Warn("Context done before event was queued", "event_id", e.ID, "type", e.Type, "error", ctx.Err())
	}
}

// Run drains the queue until Close is called. It returns immediately when
// the orchestrator has no queue, is already running or has been closed.
func (o *Orchestrator) Run(ctx context.Context) {
	if o.queue == nil {
		return
	}
	o.mu.Lock()
	if o.started || o.closed {
		o.mu.Unlock()
		return
	}
	o.started = true
	o.mu.Unlock()

	defer close(o.done)
	for e := range o.queue {
		o.Process(ctx, &e)
	}
}

// Close stops accepting events and waits for Run to drain the queue. When
// Run was never started, Close drains the queue itself.
func (o *Orchestrator) Close() {
	if o.queue == nil {
		return
	}
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	close(o.queue)
	started := o.started
	o.mu.Unlock()

	if !started {
		for e := range o.queue {
			o.Process(context.Background(), &e)
		}
		return
	}
	<-o.done
}

// Process runs an event through all registered services
func (o *Orchestrator) Process(ctx context.Context, e *events.Event) {
	slog.Debug("Orchestrator: Processing event",
		"event_id", e.ID,
		"type", e.Type,
		"source", e.Source,
		"services_count", len(o.services),
	)

	for _, service := range o.services {
		if err := service.Process(ctx, e); err != nil {
			metrics.ErrorsTotal.WithLabelValues(service.Name()).Inc()
			slog.Error("Service processing failed",
				"service", service.Name(),
				"event_id", e.ID,
				"type", e.Type,
				"error", err,
			)
		}
	}
}

// Services returns the list of registered services (for inspection/testing)
func (o *Orchestrator) Services() []services.Service {
	return o.services
}
