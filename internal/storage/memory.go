package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"studio/internal/models"
)

// MemoryRepository keeps the mirror in process. It backs the service when
// no database is configured.
type MemoryRepository struct {
	mu          sync.RWMutex
	deployments map[string]*models.DeployedContract
	order       []string
	events      []models.ContractEvent
	eventIDs    map[string]struct{}
}

// NewMemoryRepository creates an empty in-process repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		deployments: make(map[string]*models.DeployedContract),
		eventIDs:    make(map[string]struct{}),
	}
}

func (r *MemoryRepository) SaveDeployment(ctx context.Context, c *models.DeployedContract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.deployments[c.ContractID]; ok {
		return nil
	}
	stored := *c
	r.deployments[c.ContractID] = &stored
	r.order = append(r.order, c.ContractID)
	return nil
}

func (r *MemoryRepository) GetDeployment(ctx context.Context, contractID string) (*models.DeployedContract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.deployments[contractID]
	if !ok {
		return nil, fmt.Errorf("contract %s: %w", contractID, ErrNotFound)
	}
	out := *c
	return &out, nil
}

func (r *MemoryRepository) ListDeployments(ctx context.Context, factoryID string, limit, offset int) ([]*models.DeployedContract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.filterLocked(factoryID)
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].DeployedAtLedger != matched[j].DeployedAtLedger {
			return matched[i].DeployedAtLedger < matched[j].DeployedAtLedger
		}
		return matched[i].Sequence < matched[j].Sequence
	})
	return window(matched, limitOrDefault(limit), offset), nil
}

func (r *MemoryRepository) CountDeployments(ctx context.Context, factoryID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.filterLocked(factoryID)), nil
}

func (r *MemoryRepository) SaveEvent(ctx context.Context, e *models.ContractEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.eventIDs[e.ID]; ok {
		return nil
	}
	r.eventIDs[e.ID] = struct{}{}
	r.events = append(r.events, *e)
	return nil
}

func (r *MemoryRepository) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.ContractEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.ContractEvent
	for _, e := range r.events {
		if filter.ContractID != "" && e.ContractID != filter.ContractID {
			continue
		}
		if filter.EventType != "" && e.EventType != filter.EventType {
			continue
		}
		matched = append(matched, e)
	}
	return window(matched, limitOrDefault(filter.Limit), filter.Offset), nil
}

func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *MemoryRepository) Close() error {
	return nil
}

func (r *MemoryRepository) filterLocked(factoryID string) []*models.DeployedContract {
	var out []*models.DeployedContract
	for _, id := range r.order {
		c := r.deployments[id]
		if factoryID == "" || c.FactoryContractID == factoryID {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out
}

func window[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
