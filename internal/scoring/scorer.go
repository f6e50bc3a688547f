// Package scoring derives a score from each decoded event: a fraud
// classification for transactions, a bounded sentiment value for messages.
// Scorers are pure with respect to the event; all tunables come from the
// rules configuration.
package scoring

import (
	"errors"
	"fmt"

	"stream-scorer/internal/event"
)

// Score is the derived result for exactly one event record.
type Score struct {
	EventID string  `json:"event_id"`
	Domain  string  `json:"domain"`
	Value   float64 `json:"value"`
	// Fraud is set for transaction scores; Value mirrors it as 1.0 / 0.0 so
	// aggregates over fraud scores are fraud counts and rates.
	Fraud bool `json:"fraud,omitempty"`
	// FiredRules lists the fraud rules that matched, for explainability.
	FiredRules []string `json:"fired_rules,omitempty"`
	// Method records the scoring method version for sentiment scores.
	Method string `json:"method,omitempty"`
}

// Scorer derives a Score from a structurally valid event. Implementations
// never fail on valid input; unknown labels are non-matching, not errors.
type Scorer interface {
	Score(rec event.Record) Score
}

// ErrUnknownDomain is returned by the registry for events no scorer handles.
var ErrUnknownDomain = errors.New("unknown domain")

// Registry dispatches events to the scorer for their domain. Scorers are
// registered once at startup; lookups are read-only afterwards.
type Registry struct {
	scorers map[event.Domain]Scorer
}

func NewRegistry() *Registry {
	return &Registry{scorers: make(map[event.Domain]Scorer)}
}

func (r *Registry) Register(domain event.Domain, s Scorer) {
	if s == nil {
		return
	}
	r.scorers[domain] = s
}

func (r *Registry) Score(rec event.Record) (Score, error) {
	s, ok := r.scorers[rec.Domain]
	if !ok {
		return Score{}, fmt.Errorf("%w: %s", ErrUnknownDomain, rec.Domain)
	}
	return s.Score(rec), nil
}
