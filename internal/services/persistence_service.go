package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"studio/internal/events"
	"studio/internal/metrics"
	"studio/internal/models"
	"studio/internal/retry"
	"studio/internal/storage"
)

// PersistenceService mirrors events, and the deployments they announce, into
// a Repository.
type PersistenceService struct {
	repository storage.Repository
	strategy   retry.Strategy
}

// NewPersistenceService creates a PersistenceService. A nil strategy runs
// every write once.
func NewPersistenceService(repository storage.Repository, strategy retry.Strategy) *PersistenceService {
	if strategy == nil {
		strategy = retry.NoRetry{}
	}
	return &PersistenceService{
		repository: repository,
		strategy:   strategy,
	}
}

// Process saves the deployment for Deployed events and the event itself for
// every type.
func (s *PersistenceService) Process(ctx context.Context, e *events.Event) error {
	start := time.Now()
	defer func() {
		metrics.DatabaseWriteDuration.Observe(time.Since(start).Seconds())
	}()

	if e.Type == events.TypeDeployed {
		contract := DeploymentFromEvent(e)
		err := s.strategy.Execute(ctx, func(ctx context.Context) error {
			return s.repository.SaveDeployment(ctx, contract)
		})
		if err != nil {
			return fmt.Errorf("failed to save deployment %s: %w", contract.ContractID, err)
		}
	}

	record := EventFromEvent(e)
	err := s.strategy.Execute(ctx, func(ctx context.Context) error {
		return s.repository.SaveEvent(ctx, record)
	})
	if err != nil {
		return fmt.Errorf("failed to save event %s: %w", record.ID, err)
	}

	metrics.EventsPersisted.WithLabelValues(string(e.Type)).Inc()
	slog.Debug("PersistenceService: Event saved",
		"event_id", record.ID,
		"type", e.Type,
		"source", e.Source,
	)
	return nil
}

// Name returns the service name
func (s *PersistenceService) Name() string {
	return "PersistenceService"
}

// DeploymentFromEvent builds the storage shape of a Deployed event.
func DeploymentFromEvent(e *events.Event) *models.DeployedContract {
	return &models.DeployedContract{
		ContractID:        e.Address.String(),
		FactoryContractID: e.Source.String(),
		Family:            e.Family,
		Kind:              e.Kind,
		Sequence:          e.Sequence,
		DeployedAtLedger:  e.Ledger,
		DeployedAtTime:    e.Timestamp,
		Deployer:          e.Actor.String(),
		Principal:         e.Principal.String(),
		WasmHash:          e.CodeHash,
		Name:              e.Name,
		Symbol:            e.Symbol,
		InitParams:        e.Args,
		CtorArgsVersion:   e.CtorArgsVersion,
	}
}

// EventFromEvent builds the storage shape of any event. Type specific fields
// go into Data.
func EventFromEvent(e *events.Event) *models.ContractEvent {
	data := make(map[string]interface{})
	put := func(key, value string) {
		if value != "" {
			data[key] = value
		}
	}
	put("kind", e.Kind)
	put("code_hash", e.CodeHash)
	put("address", e.Address.String())
	put("principal", e.Principal.String())
	put("name", e.Name)
	put("symbol", e.Symbol)
	if e.Type == events.TypeDeployed {
		data["sequence"] = e.Sequence
		data["ctor_args_version"] = e.CtorArgsVersion
	}
	if len(e.Args) > 0 {
		data["args"] = e.Args
	}

	return &models.ContractEvent{
		ID:         e.ID.String(),
		ContractID: e.Source.String(),
		Family:     e.Family,
		EventType:  string(e.Type),
		Actor:      e.Actor.String(),
		Target:     e.Target.String(),
		LedgerSeq:  e.Ledger,
		Timestamp:  e.Timestamp,
		Data:       data,
	}
}
