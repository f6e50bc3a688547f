package scoring

import (
	"log/slog"
	"sync/atomic"

	"stream-scorer/internal/event"
	"stream-scorer/internal/rules"
	"stream-scorer/internal/sentiment"
)

// SentimentScorer wraps the sentiment model and enforces its output range.
// Out-of-range values are clamped with a warning, never failed; a model error
// degrades to a neutral score so the event still reaches the store.
type SentimentScorer struct {
	model sentiment.Model
	cfg   atomic.Pointer[rules.SentimentConfig]
}

func NewSentimentScorer(model sentiment.Model, cfg rules.SentimentConfig) *SentimentScorer {
	s := &SentimentScorer{model: model}
	s.cfg.Store(&cfg)
	return s
}

// SetConfig swaps the clamp bounds; used by the hot-reload callback.
func (s *SentimentScorer) SetConfig(cfg rules.SentimentConfig) {
	s.cfg.Store(&cfg)
}

func (s *SentimentScorer) Score(rec event.Record) Score {
	cfg := s.cfg.Load()

	value, err := s.model.Assess(rec.Content)
	if err != nil {
		slog.Warn("sentiment model failed, scoring neutral",
			"event_id", rec.ID, "err", err)
		value = 0
	}

	if value < cfg.Min {
		slog.Warn("sentiment out of range, clamped",
			"event_id", rec.ID, "value", value, "clamped_to", cfg.Min)
		value = cfg.Min
	} else if value > cfg.Max {
		slog.Warn("sentiment out of range, clamped",
			"event_id", rec.ID, "value", value, "clamped_to", cfg.Max)
		value = cfg.Max
	}

	return Score{
		EventID: rec.ID,
		Domain:  string(rec.Domain),
		Value:   value,
		Method:  s.model.Version(),
	}
}
