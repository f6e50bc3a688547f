package processor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"stream-scorer/internal/event"
)

const (
	commitInterval = 3 * time.Second
	commitBuffer   = 1000
)

// Consumer pulls records from Kafka and feeds them to the Processor one at a
// time, in arrival order. Successfully handled records go to a batched commit
// loop; failed records are left uncommitted so the transport may redeliver
// them.
type Consumer struct {
	client *kgo.Client
	proc   *Processor
	// topics maps each consumed topic to the payload domain of its events.
	topics map[string]event.Domain
}

func NewConsumer(client *kgo.Client, proc *Processor, topics map[string]event.Domain) *Consumer {
	return &Consumer{client: client, proc: proc, topics: topics}
}

// Run consumes until the context is cancelled or storage becomes
// unavailable. The in-flight event always completes its full state machine
// before Run returns.
func (c *Consumer) Run(ctx context.Context) error {
	commitChan := make(chan *kgo.Record, commitBuffer)
	commitDone := make(chan struct{})
	go c.commitLoop(ctx, commitChan, commitDone)

	slog.Info("consumer started", "topics", topicNames(c.topics))

	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			break
		}
		if err := ctx.Err(); err != nil && fetches.Empty() {
			break
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			slog.Error("fetch error", "topic", topic, "partition", partition, "err", err)
		})

		var fatal error
		fetches.EachPartition(func(p kgo.FetchTopicPartition) {
			for _, record := range p.Records {
				if fatal != nil {
					return
				}
				domain, ok := c.topics[record.Topic]
				if !ok {
					slog.Warn("skipping record from unmapped topic", "topic", record.Topic)
					commitChan <- record
					continue
				}

				if err := c.proc.Process(domain, record.Value); err != nil {
					if errors.Is(err, ErrStorageUnavailable) {
						fatal = err
					}
					// FAILED events are logged and dropped: they are not
					// handed to the commit loop, but committing any later
					// record on the partition advances past them, so the
					// transport will not retry indefinitely.
					continue
				}
				commitChan <- record
			}
		})
		if fatal != nil {
			close(commitChan)
			<-commitDone
			return fatal
		}
	}

	close(commitChan)
	<-commitDone
	slog.Info("consumer stopped")
	return nil
}

// commitLoop batches offset commits on a ticker, the cheapest way to keep
// at-least-once semantics without a round trip per record. It drains and
// flushes whatever is pending when the record channel closes.
func (c *Consumer) commitLoop(ctx context.Context, commitChan chan *kgo.Record, done chan struct{}) {
	defer close(done)

	var toCommit []*kgo.Record
	ticker := time.NewTicker(commitInterval)
	defer ticker.Stop()

	flush := func() {
		if len(toCommit) == 0 {
			return
		}
		commitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.client.CommitRecords(commitCtx, toCommit...); err != nil {
			slog.Error("commit error", "records", len(toCommit), "err", err)
			return
		}
		toCommit = nil
	}

	for {
		select {
		case record, ok := <-commitChan:
			if !ok {
				flush()
				return
			}
			toCommit = append(toCommit, record)
		case <-ticker.C:
			flush()
		}
	}
}

func topicNames(topics map[string]event.Domain) []string {
	names := make([]string, 0, len(topics))
	for t := range topics {
		names = append(names, t)
	}
	return names
}
