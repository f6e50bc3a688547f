package scoring_test

import (
	"reflect"
	"testing"
	"time"

	"stream-scorer/internal/event"
	"stream-scorer/internal/rules"
	"stream-scorer/internal/scoring"
)

func makeTransaction(amount float64, merchant, purchase, home, method string) event.Record {
	return event.Record{
		ID:               "tx-test",
		Domain:           event.DomainTransaction,
		OccurredAt:       time.Now(),
		Name:             "Alice",
		Merchant:         merchant,
		Amount:           amount,
		PurchaseLocation: purchase,
		HomeLocation:     home,
		Method:           method,
	}
}

func TestFraudScorerRules(t *testing.T) {
	scorer := scoring.NewFraudScorer(rules.Default().Fraud)

	tests := []struct {
		name      string
		rec       event.Record
		wantFraud bool
		wantRules []string
	}{
		{
			name:      "high amount at home with credit fires rule 1 only",
			rec:       makeTransaction(950, "Grocery", "64401", "64401", "Credit"),
			wantFraud: true,
			wantRules: []string{scoring.RuleHighAmount},
		},
		{
			name:      "mid amount away from home fires rule 2",
			rec:       makeTransaction(600, "Grocery", "64448", "64401", "Credit"),
			wantFraud: true,
			wantRules: []string{scoring.RuleLocationMismatch},
		},
		{
			name:      "mid amount at risky merchant fires rule 3",
			rec:       makeTransaction(600, "Online Shopping", "64401", "64401", "Credit"),
			wantFraud: true,
			wantRules: []string{scoring.RuleRiskyMerchant},
		},
		{
			name:      "high debit fires rule 4",
			rec:       makeTransaction(850, "Grocery", "64401", "64401", "Debit"),
			wantFraud: true,
			wantRules: []string{scoring.RuleDebitHigh},
		},
		{
			name:      "nominal amount is clean",
			rec:       makeTransaction(300, "Grocery", "64401", "64401", "Credit"),
			wantFraud: false,
		},
		{
			name:      "every rule can fire at once",
			rec:       makeTransaction(950, "Retail Store", "66767", "64401", "Debit"),
			wantFraud: true,
			wantRules: []string{
				scoring.RuleHighAmount,
				scoring.RuleLocationMismatch,
				scoring.RuleRiskyMerchant,
				scoring.RuleDebitHigh,
			},
		},
		{
			name:      "unknown merchant and method labels are non-matching",
			rec:       makeTransaction(600, "Space Tourism", "64401", "64401", "Barter"),
			wantFraud: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score(tt.rec)
			if got.Fraud != tt.wantFraud {
				t.Fatalf("Fraud = %v, want %v (rules %v)", got.Fraud, tt.wantFraud, got.FiredRules)
			}
			if !reflect.DeepEqual(got.FiredRules, tt.wantRules) {
				t.Fatalf("FiredRules = %v, want %v", got.FiredRules, tt.wantRules)
			}
			wantValue := 0.0
			if tt.wantFraud {
				wantValue = 1.0
			}
			if got.Value != wantValue {
				t.Fatalf("Value = %v, want %v", got.Value, wantValue)
			}
			if got.EventID != tt.rec.ID {
				t.Fatalf("EventID = %q, want %q", got.EventID, tt.rec.ID)
			}
		})
	}
}

func TestFraudScorerDeterministic(t *testing.T) {
	scorer := scoring.NewFraudScorer(rules.Default().Fraud)
	rec := makeTransaction(950, "Retail Store", "66767", "64401", "Debit")

	first := scorer.Score(rec)
	for i := 0; i < 10; i++ {
		again := scorer.Score(rec)
		if again.Fraud != first.Fraud || !reflect.DeepEqual(again.FiredRules, first.FiredRules) {
			t.Fatalf("run %d diverged: %v %v vs %v %v",
				i, again.Fraud, again.FiredRules, first.Fraud, first.FiredRules)
		}
	}
}

func TestFraudScorerSetConfig(t *testing.T) {
	cfg := rules.Default().Fraud
	scorer := scoring.NewFraudScorer(cfg)

	rec := makeTransaction(300, "Grocery", "64401", "64401", "Credit")
	if got := scorer.Score(rec); got.Fraud {
		t.Fatalf("expected clean before threshold change, fired %v", got.FiredRules)
	}

	cfg.HighAmount = 250
	scorer.SetConfig(cfg)
	got := scorer.Score(rec)
	if !got.Fraud || !reflect.DeepEqual(got.FiredRules, []string{scoring.RuleHighAmount}) {
		t.Fatalf("expected rule 1 after lowering threshold, got %v %v", got.Fraud, got.FiredRules)
	}
}
