package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scorer_events_processed_total",
		Help: "Total number of events fully processed, labelled by domain.",
	}, []string{"domain"})

	EventsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scorer_events_failed_total",
		Help: "Total number of events that failed, labelled by pipeline stage.",
	}, []string{"stage"})

	EventsDuplicate = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scorer_events_duplicate_total",
		Help: "Total number of redelivered events skipped by the duplicate check.",
	})

	FraudFlagged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scorer_fraud_flagged_total",
		Help: "Total number of transactions flagged as fraud, labelled by rule.",
	}, []string{"rule"})

	AggregateUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scorer_aggregate_updates_total",
		Help: "Total number of aggregate upserts, labelled by dimension.",
	}, []string{"dimension"})

	ProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scorer_event_processing_duration_ms",
		Help:    "End-to-end event processing latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
)
