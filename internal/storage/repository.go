// Package storage mirrors deployments and events into a queryable store.
package storage

import (
	"context"
	"errors"

	"studio/internal/models"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Repository defines the interface for all storage operations
type Repository interface {
	// Deployed contracts
	SaveDeployment(ctx context.Context, contract *models.DeployedContract) error
	GetDeployment(ctx context.Context, contractID string) (*models.DeployedContract, error)
	ListDeployments(ctx context.Context, factoryID string, limit, offset int) ([]*models.DeployedContract, error)
	CountDeployments(ctx context.Context, factoryID string) (int, error)

	// Events
	SaveEvent(ctx context.Context, event *models.ContractEvent) error
	ListEvents(ctx context.Context, filter models.EventFilter) ([]models.ContractEvent, error)

	// Health & Maintenance
	Ping(ctx context.Context) error
	Close() error
}
