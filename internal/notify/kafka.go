package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// KafkaNotifier writes notifications to a topic keyed by customer email, so
// one guest's messages stay ordered on a partition.
type KafkaNotifier struct {
	writer *kafka.Writer
}

// NewKafkaNotifier builds a writer for brokers and topic.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaNotifier{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}
}

func (k *KafkaNotifier) SendReservationNotification(ctx context.Context, n model.ReservationNotification) error {
	ev := NewEvent(n)
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	var headers []kafka.Header
	for key, v := range traceHeaders(ctx) {
		headers = append(headers, kafka.Header{Key: key, Value: []byte(v)})
	}
	msg := kafka.Message{
		Key:     []byte(n.CustomerEmail),
		Value:   body,
		Headers: headers,
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (k *KafkaNotifier) Close() error { return k.writer.Close() }
