// Package generator produces synthetic transactions and messages so the
// pipeline can run without a live upstream.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"stream-scorer/internal/event"
)

var (
	names     = []string{"Alice", "Bob", "Charlie", "Eve", "Frank", "Grace"}
	merchants = []string{"Grocery", "Gas Station", "Online Shopping", "Restaurant", "Retail Store"}
	locations = []string{"64401", "64448", "64439", "64506", "64436", "64048", "64469", "64456", "66767", "65803"}
	methods   = []string{"Debit", "Credit"}

	authors    = []string{"alice", "bob", "charlie", "eve", "frank"}
	categories = []string{"humor", "tech", "food", "travel", "gaming"}
	snippets   = []string{
		"I just shared a meme! It was amazing.",
		"This release is great, I love the new dashboard.",
		"The checkout flow is broken and confusing.",
		"Had a terrible time at the airport today.",
		"Lunch was fine, nothing special.",
		"What a boring keynote, sad.",
	}
)

type Generator struct {
	client *kgo.Client
	faker  *gofakeit.Faker
}

func New(client *kgo.Client, seed uint64) *Generator {
	return &Generator{client: client, faker: gofakeit.New(seed)}
}

type transactionMessage struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Merchant         string  `json:"merchant"`
	Amount           float64 `json:"amount"`
	PurchaseLocation string  `json:"purchase_location"`
	HomeLocation     string  `json:"home_location"`
	Type             string  `json:"type"`
	Timestamp        string  `json:"timestamp"`
}

type sentimentMessage struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Category  string `json:"category"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// NextTransaction builds one synthetic fraud-domain payload.
func (g *Generator) NextTransaction() ([]byte, error) {
	home := g.faker.RandomString(locations)
	purchase := home
	// Roughly a quarter of purchases happen away from home.
	if g.faker.Number(0, 3) == 0 {
		purchase = g.faker.RandomString(locations)
	}
	msg := transactionMessage{
		ID:               uuid.NewString(),
		Name:             g.faker.RandomString(names),
		Merchant:         g.faker.RandomString(merchants),
		Amount:           g.faker.Float64Range(1, 1000),
		PurchaseLocation: purchase,
		HomeLocation:     home,
		Type:             g.faker.RandomString(methods),
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
	}
	return json.Marshal(msg)
}

// NextMessage builds one synthetic sentiment-domain payload.
func (g *Generator) NextMessage() ([]byte, error) {
	msg := sentimentMessage{
		ID:        uuid.NewString(),
		Author:    g.faker.RandomString(authors),
		Category:  g.faker.RandomString(categories),
		Content:   g.faker.RandomString(snippets),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	return json.Marshal(msg)
}

// Produce publishes one payload for the given domain to its topic.
func (g *Generator) Produce(ctx context.Context, topic string, domain event.Domain) error {
	var payload []byte
	var err error
	switch domain {
	case event.DomainTransaction:
		payload, err = g.NextTransaction()
	case event.DomainMessage:
		payload, err = g.NextMessage()
	default:
		return fmt.Errorf("unknown domain %q", domain)
	}
	if err != nil {
		return fmt.Errorf("build payload: %w", err)
	}

	record := &kgo.Record{Topic: topic, Value: payload, Timestamp: time.Now()}
	if err := g.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	return nil
}
