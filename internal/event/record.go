package event

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Domain identifies which payload schema an event carries.
type Domain string

const (
	DomainTransaction Domain = "transaction"
	DomainMessage     Domain = "message"
)

// Dimension is a grouping key axis for aggregates.
type Dimension string

const (
	DimensionAuthor   Dimension = "author"
	DimensionCategory Dimension = "category"
	DimensionMerchant Dimension = "merchant"
)

// GroupKey is one (dimension, key) pair an event contributes to.
type GroupKey struct {
	Dimension Dimension
	Key       string
}

// Record is one ingested event. Immutable once decoded.
type Record struct {
	ID         string    `json:"id"`
	Domain     Domain    `json:"domain"`
	OccurredAt time.Time `json:"occurred_at"`

	// Transaction fields.
	Name             string  `json:"name,omitempty"`
	Merchant         string  `json:"merchant,omitempty"`
	Amount           float64 `json:"amount,omitempty"`
	PurchaseLocation string  `json:"purchase_location,omitempty"`
	HomeLocation     string  `json:"home_location,omitempty"`
	Method           string  `json:"type,omitempty"`

	// Message fields.
	Author   string `json:"author,omitempty"`
	Category string `json:"category,omitempty"`
	Content  string `json:"content,omitempty"`
}

// GroupingKeys returns every aggregate key the event contributes to. A
// transaction counts toward its merchant and its cardholder; a message counts
// toward its author and its category.
func (r Record) GroupingKeys() []GroupKey {
	switch r.Domain {
	case DomainTransaction:
		return []GroupKey{
			{Dimension: DimensionMerchant, Key: r.Merchant},
			{Dimension: DimensionAuthor, Key: r.Name},
		}
	case DomainMessage:
		return []GroupKey{
			{Dimension: DimensionAuthor, Key: r.Author},
			{Dimension: DimensionCategory, Key: r.Category},
		}
	}
	return nil
}

// DeriveID computes a stable identifier from the payload fields, so a
// redelivered payload without an explicit id maps to the same record.
func (r Record) DeriveID() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%.2f|%s|%s|%s|%s|%s",
		r.Domain, r.OccurredAt.UTC().Format(time.RFC3339),
		r.Name, r.Merchant, r.Amount, r.PurchaseLocation, r.HomeLocation,
		r.Method, r.Author, r.Category)
	fmt.Fprintf(h, "|%s", r.Content)
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// KnownDimension reports whether s names a queryable aggregate dimension.
func KnownDimension(s string) (Dimension, bool) {
	switch Dimension(s) {
	case DimensionAuthor, DimensionCategory, DimensionMerchant:
		return Dimension(s), true
	}
	return "", false
}
