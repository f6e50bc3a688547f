package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrMalformedEvent marks payloads that fail structural validation. Such
// events are dropped without side effects; redelivery cannot repair them.
var ErrMalformedEvent = errors.New("malformed event")

// timestampFormats lists the layouts producers are known to emit.
var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
}

type transactionPayload struct {
	ID               string   `json:"id"`
	Name             *string  `json:"name"`
	Merchant         *string  `json:"merchant"`
	Amount           *float64 `json:"amount"`
	PurchaseLocation *string  `json:"purchase_location"`
	HomeLocation     *string  `json:"home_location"`
	Type             *string  `json:"type"`
	Timestamp        *string  `json:"timestamp"`
}

type messagePayload struct {
	ID        string  `json:"id"`
	Author    *string `json:"author"`
	Category  *string `json:"category"`
	Content   *string `json:"content"`
	Timestamp *string `json:"timestamp"`
}

// Decode parses a raw transport payload into a validated Record. It performs
// structural validation and type coercion only; no scoring logic.
func Decode(domain Domain, raw []byte) (Record, error) {
	switch domain {
	case DomainTransaction:
		return decodeTransaction(raw)
	case DomainMessage:
		return decodeMessage(raw)
	default:
		return Record{}, fmt.Errorf("%w: unknown domain %q", ErrMalformedEvent, domain)
	}
}

func decodeTransaction(raw []byte) (Record, error) {
	var p transactionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	if p.Name == nil || p.Merchant == nil || p.Amount == nil ||
		p.PurchaseLocation == nil || p.HomeLocation == nil ||
		p.Type == nil || p.Timestamp == nil {
		return Record{}, fmt.Errorf("%w: transaction is missing required fields", ErrMalformedEvent)
	}
	if math.IsNaN(*p.Amount) || math.IsInf(*p.Amount, 0) {
		return Record{}, fmt.Errorf("%w: amount is not finite", ErrMalformedEvent)
	}
	if *p.Amount <= 0 {
		return Record{}, fmt.Errorf("%w: amount must be positive, got %v", ErrMalformedEvent, *p.Amount)
	}

	ts, err := parseTimestamp(*p.Timestamp)
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:               p.ID,
		Domain:           DomainTransaction,
		OccurredAt:       ts,
		Name:             *p.Name,
		Merchant:         *p.Merchant,
		Amount:           *p.Amount,
		PurchaseLocation: *p.PurchaseLocation,
		HomeLocation:     *p.HomeLocation,
		Method:           *p.Type,
	}
	if rec.ID == "" {
		rec.ID = rec.DeriveID()
	}
	return rec, nil
}

func decodeMessage(raw []byte) (Record, error) {
	var p messagePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	if p.Author == nil || p.Category == nil || p.Content == nil || p.Timestamp == nil {
		return Record{}, fmt.Errorf("%w: message is missing required fields", ErrMalformedEvent)
	}

	ts, err := parseTimestamp(*p.Timestamp)
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:         p.ID,
		Domain:     DomainMessage,
		OccurredAt: ts,
		Author:     *p.Author,
		Category:   *p.Category,
		Content:    *p.Content,
	}
	if rec.ID == "" {
		rec.ID = rec.DeriveID()
	}
	return rec, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable timestamp %q", ErrMalformedEvent, s)
}
