package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/pfrederiksen/ff-events/internal/event"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes each event of a snapshot as one message keyed by row identity
type KafkaNotifier struct {
	writer messageWriter
	topic  string
}

// NewKafkaNotifier creates a notifier writing to topic on brokers
func NewKafkaNotifier(brokers []string, topic string) (*KafkaNotifier, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            3,
		AllowAutoTopicCreation: true,
	}
	return &KafkaNotifier{writer: w, topic: topic}, nil
}

// Notify writes all events in one batch. Every message of a batch carries the
// same snapshot id so consumers can tell snapshots apart.
func (n *KafkaNotifier) Notify(ctx context.Context, events []*event.Event) error {
	if len(events) == 0 {
		return nil
	}
	snapshotID := uuid.NewString()
	now := time.Now().UTC()

	msgs := make([]kafka.Message, 0, len(events))
	for i, evt := range events {
		value, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("encoding event %s: %w", evt.Key(), err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(evt.Key()),
			Value: value,
			Time:  now,
			Headers: []kafka.Header{
				{Key: "snapshot_id", Value: []byte(snapshotID)},
				{Key: "position", Value: []byte(fmt.Sprintf("%d", i))},
				{Key: "snapshot_size", Value: []byte(fmt.Sprintf("%d", len(events)))},
			},
		})
	}

	if err := n.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publishing %d events to %s: %w", len(msgs), n.topic, err)
	}
	return nil
}

// Close flushes and closes the writer
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
