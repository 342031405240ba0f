// Package services reacts to committed factory events: mirroring them into
// storage and updating metrics.
package services

import (
	"context"

	"studio/internal/events"
)

// Service defines the interface that all event consumers implement
type Service interface {
	// Process handles a single event. An error is logged by the caller and
	// does not stop the remaining services.
	Process(ctx context.Context, e *events.Event) error

	// Name returns the service name for logging
	Name() string
}
