// Package store is the durable side of the pipeline: raw events, per-event
// scores, and running aggregates in Postgres. The processor is its only
// writer; the reader queries snapshots concurrently.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"stream-scorer/internal/event"
	"stream-scorer/internal/scoring"
)

// ErrDuplicateEvent is returned when an event id was already persisted. The
// processor uses it to make at-least-once redelivery idempotent.
var ErrDuplicateEvent = errors.New("duplicate event")

const uniqueViolationCode = "23505"

// Aggregate is the running statistic for one grouping key.
type Aggregate struct {
	Dimension event.Dimension `json:"dimension"`
	Key       string          `json:"key"`
	Count     int64           `json:"count"`
	Sum       float64         `json:"sum"`
	Average   float64         `json:"average"`
}

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// InsertEvent appends one raw event. A primary key conflict maps to
// ErrDuplicateEvent so redelivered events can be detected.
func (s *Store) InsertEvent(ctx context.Context, rec event.Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO raw_events
			(id, domain, occurred_at, name, merchant, amount,
			 purchase_location, home_location, method, author, category, content)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.ID, string(rec.Domain),
		pgtype.Timestamptz{Time: rec.OccurredAt.UTC(), Valid: true},
		textOrNull(rec.Name), textOrNull(rec.Merchant), amountOrNull(rec),
		textOrNull(rec.PurchaseLocation), textOrNull(rec.HomeLocation),
		textOrNull(rec.Method), textOrNull(rec.Author),
		textOrNull(rec.Category), textOrNull(rec.Content),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateEvent, rec.ID)
		}
		return fmt.Errorf("insert raw event: %w", err)
	}
	return nil
}

// InsertScore appends the derived score for one event.
func (s *Store) InsertScore(ctx context.Context, sc scoring.Score) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO event_scores (event_id, domain, value, fraud, fired_rules, method)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sc.EventID, sc.Domain, sc.Value, sc.Fraud, sc.FiredRules,
		textOrNull(sc.Method),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: score for %s", ErrDuplicateEvent, sc.EventID)
		}
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

// HasScore reports whether a score already exists for the event id. Used to
// decide whether a redelivered event may skip re-aggregation.
func (s *Store) HasScore(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_scores WHERE event_id = $1)`,
		eventID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check score existence: %w", err)
	}
	return exists, nil
}

// UpsertAggregate applies one score value to the aggregate for (dimension,
// key) and returns the updated row. The single INSERT ... ON CONFLICT
// statement makes concurrent calls on the same key serialize on the row lock,
// so the contract holds even if processing is ever parallelized.
func (s *Store) UpsertAggregate(ctx context.Context, dim event.Dimension, key string, value float64) (Aggregate, error) {
	agg := Aggregate{Dimension: dim, Key: key}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO aggregates (dimension, key, count, sum, average)
		VALUES ($1, $2, 1, $3, $3)
		ON CONFLICT (dimension, key) DO UPDATE SET
			count      = aggregates.count + 1,
			sum        = aggregates.sum + EXCLUDED.sum,
			average    = (aggregates.sum + EXCLUDED.sum) / (aggregates.count + 1),
			updated_at = now()
		RETURNING count, sum, average`,
		string(dim), key, value,
	).Scan(&agg.Count, &agg.Sum, &agg.Average)
	if err != nil {
		return Aggregate{}, fmt.Errorf("upsert aggregate %s/%s: %w", dim, key, err)
	}
	return agg, nil
}

// ListAggregates returns the snapshot for one dimension, best average first.
func (s *Store) ListAggregates(ctx context.Context, dim event.Dimension) ([]Aggregate, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT dimension, key, count, sum, average
		FROM aggregates
		WHERE dimension = $1
		ORDER BY average DESC, key ASC`,
		string(dim),
	)
	if err != nil {
		return nil, fmt.Errorf("list aggregates: %w", err)
	}
	defer rows.Close()

	var aggs []Aggregate
	for rows.Next() {
		var a Aggregate
		if err := rows.Scan(&a.Dimension, &a.Key, &a.Count, &a.Sum, &a.Average); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		aggs = append(aggs, a)
	}
	return aggs, rows.Err()
}

// ListRecentEvents returns the newest raw events, newest first.
func (s *Store) ListRecentEvents(ctx context.Context, limit int) ([]event.Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, domain, occurred_at,
		       COALESCE(name, ''), COALESCE(merchant, ''), COALESCE(amount, 0),
		       COALESCE(purchase_location, ''), COALESCE(home_location, ''),
		       COALESCE(method, ''), COALESCE(author, ''),
		       COALESCE(category, ''), COALESCE(content, '')
		FROM raw_events
		ORDER BY received_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list raw events: %w", err)
	}
	defer rows.Close()

	var recs []event.Record
	for rows.Next() {
		var r event.Record
		var domain string
		var occurredAt pgtype.Timestamptz
		if err := rows.Scan(&r.ID, &domain, &occurredAt,
			&r.Name, &r.Merchant, &r.Amount,
			&r.PurchaseLocation, &r.HomeLocation,
			&r.Method, &r.Author, &r.Category, &r.Content); err != nil {
			return nil, fmt.Errorf("scan raw event: %w", err)
		}
		r.Domain = event.Domain(domain)
		r.OccurredAt = occurredAt.Time
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// ListRecentScores returns the newest scores, newest first.
func (s *Store) ListRecentScores(ctx context.Context, limit int) ([]scoring.Score, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT event_id, domain, value, fraud,
		       COALESCE(fired_rules, '{}'), COALESCE(method, '')
		FROM event_scores
		ORDER BY created_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var scores []scoring.Score
	for rows.Next() {
		var sc scoring.Score
		if err := rows.Scan(&sc.EventID, &sc.Domain, &sc.Value,
			&sc.Fraud, &sc.FiredRules, &sc.Method); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		scores = append(scores, sc)
	}
	return scores, rows.Err()
}

// Ping verifies storage reachability within a bounded wait.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func textOrNull(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func amountOrNull(rec event.Record) pgtype.Float8 {
	return pgtype.Float8{Float64: rec.Amount, Valid: rec.Domain == event.DomainTransaction}
}
