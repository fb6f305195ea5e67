package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Kafka publishes outbox entries to a topic keyed by complaint number, so
// replays for one complaint stay ordered within a partition.
type Kafka struct {
	client *kgo.Client
	topic  string
}

// NewKafka connects a producer to the given brokers.
func NewKafka(brokers []string, topic string) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchMaxBytes(1<<20),
		kgo.ProduceRequestTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect outbox brokers: %w", err)
	}
	return &Kafka{client: client, topic: topic}, nil
}

func (k *Kafka) Enqueue(ctx context.Context, entry Entry) error {
	if entry.FailedAt.IsZero() {
		entry.FailedAt = time.Now()
	}
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode outbox entry: %w", err)
	}
	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(entry.ComplaintNumber),
		Value: value,
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce outbox entry: %w", err)
	}
	return nil
}

// Close flushes and releases the producer.
func (k *Kafka) Close() {
	k.client.Close()
}
