package event_test

import (
	"errors"
	"testing"

	"stream-scorer/internal/event"
)

const validTransaction = `{
	"name": "Alice", "merchant": "Grocery", "amount": 42.5,
	"purchase_location": "64401", "home_location": "64401",
	"type": "Credit", "timestamp": "2025-01-29T14:35:20Z"
}`

const validMessage = `{
	"author": "alice", "category": "humor",
	"content": "I just shared a meme! It was amazing.",
	"timestamp": "2025-01-29 14:35:20"
}`

func TestDecodeTransaction(t *testing.T) {
	rec, err := event.Decode(event.DomainTransaction, []byte(validTransaction))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if rec.Domain != event.DomainTransaction {
		t.Fatalf("Domain = %q", rec.Domain)
	}
	if rec.Name != "Alice" || rec.Merchant != "Grocery" || rec.Amount != 42.5 {
		t.Fatalf("unexpected fields: %+v", rec)
	}
	if rec.ID == "" {
		t.Fatal("expected a derived ID for payloads without one")
	}

	keys := rec.GroupingKeys()
	if len(keys) != 2 {
		t.Fatalf("GroupingKeys = %v, want merchant and author", keys)
	}
	if keys[0].Dimension != event.DimensionMerchant || keys[0].Key != "Grocery" {
		t.Fatalf("first key = %+v", keys[0])
	}
	if keys[1].Dimension != event.DimensionAuthor || keys[1].Key != "Alice" {
		t.Fatalf("second key = %+v", keys[1])
	}
}

func TestDecodeMessageSpaceSeparatedTimestamp(t *testing.T) {
	rec, err := event.Decode(event.DomainMessage, []byte(validMessage))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if rec.OccurredAt.Hour() != 14 || rec.OccurredAt.Minute() != 35 {
		t.Fatalf("OccurredAt = %v", rec.OccurredAt)
	}
	keys := rec.GroupingKeys()
	if len(keys) != 2 || keys[0].Key != "alice" || keys[1].Key != "humor" {
		t.Fatalf("GroupingKeys = %v", keys)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name   string
		domain event.Domain
		raw    string
	}{
		{"not json", event.DomainTransaction, `{"name": `},
		{"missing amount", event.DomainTransaction,
			`{"name":"A","merchant":"M","purchase_location":"1","home_location":"1","type":"Credit","timestamp":"2025-01-29T14:35:20Z"}`},
		{"amount wrong type", event.DomainTransaction,
			`{"name":"A","merchant":"M","amount":"lots","purchase_location":"1","home_location":"1","type":"Credit","timestamp":"2025-01-29T14:35:20Z"}`},
		{"amount not positive", event.DomainTransaction,
			`{"name":"A","merchant":"M","amount":0,"purchase_location":"1","home_location":"1","type":"Credit","timestamp":"2025-01-29T14:35:20Z"}`},
		{"bad timestamp", event.DomainTransaction,
			`{"name":"A","merchant":"M","amount":5,"purchase_location":"1","home_location":"1","type":"Credit","timestamp":"yesterday"}`},
		{"missing author", event.DomainMessage,
			`{"category":"humor","content":"hi","timestamp":"2025-01-29T14:35:20Z"}`},
		{"unknown domain", event.Domain("telemetry"), validMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := event.Decode(tt.domain, []byte(tt.raw))
			if !errors.Is(err, event.ErrMalformedEvent) {
				t.Fatalf("expected ErrMalformedEvent, got %v", err)
			}
		})
	}
}

func TestDerivedIDStable(t *testing.T) {
	a, err := event.Decode(event.DomainMessage, []byte(validMessage))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	b, err := event.Decode(event.DomainMessage, []byte(validMessage))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if a.ID != b.ID {
		t.Fatalf("derived IDs differ for identical payloads: %q vs %q", a.ID, b.ID)
	}

	c, err := event.Decode(event.DomainMessage,
		[]byte(`{"author":"bob","category":"humor","content":"hi","timestamp":"2025-01-29 14:35:20"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if c.ID == a.ID {
		t.Fatal("different payloads derived the same ID")
	}
}

func TestDecodeKeepsExplicitID(t *testing.T) {
	raw := `{"id":"evt-123","author":"alice","category":"humor","content":"hi","timestamp":"2025-01-29T14:35:20Z"}`
	rec, err := event.Decode(event.DomainMessage, []byte(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if rec.ID != "evt-123" {
		t.Fatalf("ID = %q, want evt-123", rec.ID)
	}
}
