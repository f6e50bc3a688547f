package scoring_test

import (
	"errors"
	"testing"

	"stream-scorer/internal/event"
	"stream-scorer/internal/rules"
	"stream-scorer/internal/scoring"
)

// stubModel returns a fixed value or error, standing in for an external
// sentiment service.
type stubModel struct {
	value float64
	err   error
}

func (m stubModel) Assess(string) (float64, error) { return m.value, m.err }
func (m stubModel) Version() string                { return "stub/v1" }

func makeMessage(content string) event.Record {
	return event.Record{
		ID:       "msg-test",
		Domain:   event.DomainMessage,
		Author:   "alice",
		Category: "tech",
		Content:  content,
	}
}

func TestSentimentScorerClamping(t *testing.T) {
	tests := []struct {
		name  string
		model stubModel
		want  float64
	}{
		{"in range passes through", stubModel{value: 0.87}, 0.87},
		{"above max clamps to max", stubModel{value: 1.7}, 1.0},
		{"below min clamps to min", stubModel{value: -2.3}, -1.0},
		{"exact bound untouched", stubModel{value: -1.0}, -1.0},
		{"model error scores neutral", stubModel{err: errors.New("model offline")}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := scoring.NewSentimentScorer(tt.model, rules.Default().Sentiment)
			got := scorer.Score(makeMessage("whatever"))
			if got.Value != tt.want {
				t.Fatalf("Value = %v, want %v", got.Value, tt.want)
			}
			if got.Method != "stub/v1" {
				t.Fatalf("Method = %q, want stub/v1", got.Method)
			}
			if got.Fraud || got.FiredRules != nil {
				t.Fatalf("sentiment score carries fraud fields: %+v", got)
			}
		})
	}
}

func TestRegistryDispatch(t *testing.T) {
	reg := scoring.NewRegistry()
	reg.Register(event.DomainMessage, scoring.NewSentimentScorer(stubModel{value: 0.5}, rules.Default().Sentiment))

	sc, err := reg.Score(makeMessage("hello"))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if sc.Value != 0.5 {
		t.Fatalf("Value = %v, want 0.5", sc.Value)
	}

	_, err = reg.Score(event.Record{Domain: event.DomainTransaction})
	if !errors.Is(err, scoring.ErrUnknownDomain) {
		t.Fatalf("expected ErrUnknownDomain, got %v", err)
	}
}
