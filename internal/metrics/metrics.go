// Package metrics exposes prometheus collectors for the factory engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Throughput metrics
var (
	Deployments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_deployments_total",
			Help: "Total number of instances deployed by family and kind",
		},
		[]string{"family", "kind"},
	)

	FactoriesDeployed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_factories_deployed_total",
			Help: "Total number of factories deployed by the master, by role",
		},
		[]string{"role"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_events_published_total",
			Help: "Total number of events published by type",
		},
		[]string{"event_type"},
	)

	EventsPersisted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_events_persisted_total",
			Help: "Total number of events mirrored into storage by type",
		},
		[]string{"event_type"},
	)
)

// Performance metrics
var (
	DatabaseWriteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "studio_db_write_duration_seconds",
		Help:    "Time taken to mirror one event into storage",
		Buckets: prometheus.DefBuckets,
	})

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studio_api_request_duration_seconds",
			Help:    "Time taken to serve API requests by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "status"},
	)
)

// State metrics
var (
	CurrentLedger = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "studio_current_ledger",
		Help: "Ledger sequence of the most recent event",
	})

	FactoryPaused = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "studio_factory_paused",
			Help: "1 when the factory is paused, 0 otherwise",
		},
		[]string{"family", "address"},
	)

	WasmUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_wasm_updates_total",
			Help: "Total number of registry updates by family and kind",
		},
		[]string{"family", "kind"},
	)
)

// Error metrics
var (
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_errors_total",
			Help: "Total number of errors by service",
		},
		[]string{"service"},
	)
)
