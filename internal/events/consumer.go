package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/betcleverde/betclever-landing-hub/internal/support"
)

// Consumer reads message-created events off the stream and hands each one to
// the registered sinks in delivery order. No re-sorting happens here: if the
// stream ever delivers out of created_at order, the projections misorder that
// message until the next full reload, which is the documented weak guarantee.
type Consumer struct {
	reader *kafka.Reader
	log    *zap.SugaredLogger
}

func NewConsumer(brokers []string, topic, groupID string, log *zap.SugaredLogger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: r, log: log}
}

// Start blocks reading the stream until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context, sinks ...func(support.Message)) {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Errorf("kafka read error: %v", err)
			time.Sleep(time.Second)
			continue
		}
		var msg support.Message
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			c.log.Warnf("invalid message event: %v", err)
			continue
		}
		for _, sink := range sinks {
			sink(msg)
		}
	}
}

func (c *Consumer) Close() error {
	if c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
