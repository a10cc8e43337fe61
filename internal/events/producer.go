package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/betcleverde/betclever-landing-hub/internal/support"
)

// Producer publishes message-created rows onto the notification stream.
// Implements support.Publisher.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	// Hash balancer routes by message key; one conversation stays on one
	// partition so its events are consumed in produce order.
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.Hash{},
	})
	return &Producer{writer: w}
}

func (p *Producer) PublishMessageCreated(m support.Message) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Key by conversation so per-conversation order survives partitioning.
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(m.UserID),
		Value: b,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
