// Package kafka publishes append events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/tinwood/ledgerd/internal/events"
)

const topic = "ledger.entries"

// Publisher writes EntryAppended events keyed by ledger name, so one ledger's
// events stay ordered within a partition.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher connects a writer to the given brokers.
func NewPublisher(brokers []string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, ev events.EntryAppended) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Ledger),
		Value: data,
	})
}

func (p *Publisher) Close() error { return p.writer.Close() }
