// Package processor drives each event through the pipeline: decode, score,
// persist raw and score, update the affected aggregates, acknowledge. One
// event at a time, in delivery order.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stream-scorer/internal/event"
	"stream-scorer/internal/metrics"
	"stream-scorer/internal/scoring"
	"stream-scorer/internal/store"
)

// Stage names the states an event moves through. A failure is always
// attributed to the stage it happened in.
type Stage string

const (
	StageReceived       Stage = "RECEIVED"
	StageDecoded        Stage = "DECODED"
	StageScored         Stage = "SCORED"
	StagePersistedRaw   Stage = "PERSISTED_RAW"
	StagePersistedScore Stage = "PERSISTED_SCORE"
	StageAggregated     Stage = "AGGREGATED"
	StageAcknowledged   Stage = "ACKNOWLEDGED"
)

// ErrStorageUnavailable escalates repeated storage failures to a fatal
// condition. Silent permanent data loss is worse than stopping.
var ErrStorageUnavailable = errors.New("storage unavailable")

// storageTimeout bounds every storage call. Derived from Background on
// purpose: once an event is in flight it runs to completion even if the
// consumer context is cancelled by a shutdown signal.
const storageTimeout = 10 * time.Second

// Storage is the slice of the aggregate store the processor writes through.
// Injected rather than reached for, so tests can run against a fake.
type Storage interface {
	InsertEvent(ctx context.Context, rec event.Record) error
	InsertScore(ctx context.Context, sc scoring.Score) error
	HasScore(ctx context.Context, eventID string) (bool, error)
	UpsertAggregate(ctx context.Context, dim event.Dimension, key string, value float64) (store.Aggregate, error)
}

type Processor struct {
	storage  Storage
	registry *scoring.Registry

	// failLimit is the number of consecutive storage failures tolerated
	// before the processor reports ErrStorageUnavailable.
	failLimit           int
	consecutiveFailures int
}

func New(storage Storage, registry *scoring.Registry, failLimit int) *Processor {
	if failLimit <= 0 {
		failLimit = 10
	}
	return &Processor{storage: storage, registry: registry, failLimit: failLimit}
}

// Process runs one raw payload through the full state machine. A nil return
// means the event may be acknowledged; this includes malformed and
// already-applied duplicate events, which redelivery cannot improve. A
// non-nil return marks the event FAILED; ErrStorageUnavailable means the
// caller should stop consuming entirely.
func (p *Processor) Process(domain event.Domain, raw []byte) error {
	start := time.Now()

	rec, err := event.Decode(domain, raw)
	if err != nil {
		slog.Warn("dropping malformed event",
			"domain", domain, "stage", StageDecoded, "reason", err)
		metrics.EventsFailed.WithLabelValues(string(StageDecoded)).Inc()
		return nil
	}

	sc, err := p.registry.Score(rec)
	if err != nil {
		slog.Warn("no scorer for event, skipping",
			"event_id", rec.ID, "stage", StageScored, "reason", err)
		metrics.EventsFailed.WithLabelValues(string(StageScored)).Inc()
		return nil
	}

	if err := p.insertEvent(rec); err != nil {
		if !errors.Is(err, store.ErrDuplicateEvent) {
			return p.storageFailure(StagePersistedRaw, rec.ID, err)
		}
		metrics.EventsDuplicate.Inc()
		applied, err := p.hasScore(rec.ID)
		if err != nil {
			return p.storageFailure(StagePersistedRaw, rec.ID, err)
		}
		if applied {
			// Redelivery of a fully applied event: never re-aggregate.
			slog.Info("redelivered event already applied", "event_id", rec.ID)
			p.consecutiveFailures = 0
			return nil
		}
		// Raw row exists but no score: resume from the score stage.
	}

	if err := p.insertScore(sc); err != nil {
		if errors.Is(err, store.ErrDuplicateEvent) {
			// The score slipped in between our probe and this insert; the
			// aggregates for it were or will be applied by that writer.
			p.consecutiveFailures = 0
			return nil
		}
		return p.storageFailure(StagePersistedScore, rec.ID, err)
	}

	for _, gk := range rec.GroupingKeys() {
		if gk.Key == "" {
			continue
		}
		if err := p.upsertAggregate(gk, sc.Value); err != nil {
			return p.storageFailure(StageAggregated, rec.ID, err)
		}
		metrics.AggregateUpdates.WithLabelValues(string(gk.Dimension)).Inc()
	}

	p.consecutiveFailures = 0
	metrics.EventsProcessed.WithLabelValues(string(rec.Domain)).Inc()
	for _, rule := range sc.FiredRules {
		metrics.FraudFlagged.WithLabelValues(rule).Inc()
	}
	metrics.ProcessingDuration.Observe(float64(time.Since(start).Milliseconds()))

	if sc.Fraud {
		slog.Warn("fraud detected",
			"event_id", rec.ID, "merchant", rec.Merchant,
			"amount", rec.Amount, "rules", sc.FiredRules)
	}
	return nil
}

func (p *Processor) insertEvent(rec event.Record) error {
	ctx, cancel := opContext()
	defer cancel()
	return p.storage.InsertEvent(ctx, rec)
}

func (p *Processor) insertScore(sc scoring.Score) error {
	ctx, cancel := opContext()
	defer cancel()
	return p.storage.InsertScore(ctx, sc)
}

func (p *Processor) hasScore(eventID string) (bool, error) {
	ctx, cancel := opContext()
	defer cancel()
	return p.storage.HasScore(ctx, eventID)
}

func (p *Processor) upsertAggregate(gk event.GroupKey, value float64) error {
	ctx, cancel := opContext()
	defer cancel()
	_, err := p.storage.UpsertAggregate(ctx, gk.Dimension, gk.Key, value)
	return err
}

func (p *Processor) storageFailure(stage Stage, eventID string, err error) error {
	p.consecutiveFailures++
	metrics.EventsFailed.WithLabelValues(string(stage)).Inc()
	slog.Error("event failed",
		"event_id", eventID, "stage", stage, "reason", err,
		"consecutive_failures", p.consecutiveFailures)
	if p.consecutiveFailures >= p.failLimit {
		return fmt.Errorf("%w: %d consecutive failures, last at %s: %v",
			ErrStorageUnavailable, p.consecutiveFailures, stage, err)
	}
	return fmt.Errorf("stage %s: %w", stage, err)
}

func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storageTimeout)
}
