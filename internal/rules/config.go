package rules

import "fmt"

// Config holds every tunable of the scoring engines. Thresholds live here,
// not in rule code, so they can be adjusted without redeploying.
type Config struct {
	Fraud     FraudConfig     `yaml:"fraud"`
	Sentiment SentimentConfig `yaml:"sentiment"`
}

// FraudConfig parameterizes the four fraud rules.
type FraudConfig struct {
	// HighAmount flags any transaction above this amount outright.
	HighAmount float64 `yaml:"high_amount"`
	// MidAmount is the cutoff shared by the location-mismatch and
	// risky-merchant rules.
	MidAmount float64 `yaml:"mid_amount"`
	// DebitAmount is the cutoff for the debit-usage rule.
	DebitAmount float64 `yaml:"debit_amount"`
	// RiskyMerchants lists merchant categories considered high risk.
	RiskyMerchants []string `yaml:"risky_merchants"`
	// DebitMethod is the card type the debit rule matches against.
	DebitMethod string `yaml:"debit_method"`
}

// SentimentConfig bounds the sentiment model output.
type SentimentConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Default returns the configuration shipped in configs/rules.yaml.
func Default() *Config {
	return &Config{
		Fraud: FraudConfig{
			HighAmount:     900,
			MidAmount:      500,
			DebitAmount:    800,
			RiskyMerchants: []string{"Online Shopping", "Retail Store"},
			DebitMethod:    "Debit",
		},
		Sentiment: SentimentConfig{Min: -1.0, Max: 1.0},
	}
}

// Validate rejects configurations that would make rule results meaningless.
func (c *Config) Validate() error {
	if c.Fraud.HighAmount <= 0 {
		return fmt.Errorf("fraud.high_amount must be positive, got %v", c.Fraud.HighAmount)
	}
	if c.Fraud.MidAmount <= 0 {
		return fmt.Errorf("fraud.mid_amount must be positive, got %v", c.Fraud.MidAmount)
	}
	if c.Fraud.DebitAmount <= 0 {
		return fmt.Errorf("fraud.debit_amount must be positive, got %v", c.Fraud.DebitAmount)
	}
	if c.Fraud.MidAmount > c.Fraud.HighAmount {
		return fmt.Errorf("fraud.mid_amount (%v) must not exceed fraud.high_amount (%v)",
			c.Fraud.MidAmount, c.Fraud.HighAmount)
	}
	if c.Sentiment.Min >= c.Sentiment.Max {
		return fmt.Errorf("sentiment.min (%v) must be below sentiment.max (%v)",
			c.Sentiment.Min, c.Sentiment.Max)
	}
	return nil
}

// RiskyMerchant reports whether the merchant label is in the high-risk set.
// Unknown labels are simply not risky.
func (c *FraudConfig) RiskyMerchant(merchant string) bool {
	for _, m := range c.RiskyMerchants {
		if m == merchant {
			return true
		}
	}
	return false
}
