package services

import (
	"context"

	"studio/internal/events"
	"studio/internal/metrics"
)

// MetricsService keeps the prometheus collectors in step with events.
type MetricsService struct{}

func NewMetricsService() *MetricsService {
	return &MetricsService{}
}

func (s *MetricsService) Process(ctx context.Context, e *events.Event) error {
	metrics.EventsPublished.WithLabelValues(string(e.Type)).Inc()
	if e.Ledger > 0 {
		metrics.CurrentLedger.Set(float64(e.Ledger))
	}

	switch e.Type {
	case events.TypeDeployed:
		metrics.Deployments.WithLabelValues(e.Family, e.Kind).Inc()
	case events.TypeFactoryDeployed:
		metrics.FactoriesDeployed.WithLabelValues(e.Kind).Inc()
	case events.TypeWasmUpdated:
		metrics.WasmUpdates.WithLabelValues(e.Family, e.Kind).Inc()
	case events.TypePaused:
		metrics.FactoryPaused.WithLabelValues(e.Family, e.Source.String()).Set(1)
	case events.TypeUnpaused:
		metrics.FactoryPaused.WithLabelValues(e.Family, e.Source.String()).Set(0)
	}
	return nil
}

func (s *MetricsService) Name() string {
	return "MetricsService"
}
