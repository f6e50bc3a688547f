package scoring

import (
	"sync/atomic"

	"stream-scorer/internal/event"
	"stream-scorer/internal/rules"
)

// Fraud rule identifiers, recorded on every score they fire for.
const (
	RuleHighAmount       = "high_amount"
	RuleLocationMismatch = "location_mismatch"
	RuleRiskyMerchant    = "risky_merchant"
	RuleDebitHigh        = "debit_high"
)

// FraudScorer classifies transactions with an OR-combined rule set. Rules are
// independent; evaluation order never changes the flag, only all firing rules
// are collected. Thresholds come from the rules config and may be swapped at
// runtime via SetConfig.
type FraudScorer struct {
	cfg atomic.Pointer[rules.FraudConfig]
}

func NewFraudScorer(cfg rules.FraudConfig) *FraudScorer {
	s := &FraudScorer{}
	s.cfg.Store(&cfg)
	return s
}

// SetConfig swaps the rule thresholds; used by the hot-reload callback.
func (s *FraudScorer) SetConfig(cfg rules.FraudConfig) {
	s.cfg.Store(&cfg)
}

func (s *FraudScorer) Score(rec event.Record) Score {
	cfg := s.cfg.Load()
	var fired []string

	if rec.Amount > cfg.HighAmount {
		fired = append(fired, RuleHighAmount)
	}
	// Exact string match keeps classification stable; a geo-distance
	// comparison would silently reclassify past traffic.
	if rec.Amount > cfg.MidAmount && rec.PurchaseLocation != rec.HomeLocation {
		fired = append(fired, RuleLocationMismatch)
	}
	if rec.Amount > cfg.MidAmount && cfg.RiskyMerchant(rec.Merchant) {
		fired = append(fired, RuleRiskyMerchant)
	}
	if rec.Method == cfg.DebitMethod && rec.Amount > cfg.DebitAmount {
		fired = append(fired, RuleDebitHigh)
	}

	score := Score{
		EventID:    rec.ID,
		Domain:     string(rec.Domain),
		Fraud:      len(fired) > 0,
		FiredRules: fired,
	}
	if score.Fraud {
		score.Value = 1.0
	}
	return score
}
