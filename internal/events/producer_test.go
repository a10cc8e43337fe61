package events

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducer_PartitionRouting(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "support.message.created")
	defer p.Close()

	balancer := p.writer.Balancer
	require.IsType(t, &kafka.Hash{}, balancer)

	t.Run("one conversation stays on one partition", func(t *testing.T) {
		msg := kafka.Message{Key: []byte("a@x.com")}
		first := balancer.Balance(msg, 0, 1, 2)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, balancer.Balance(msg, 0, 1, 2))
		}
	})

	t.Run("routing follows the key, not traffic", func(t *testing.T) {
		a := kafka.Message{Key: []byte("a@x.com")}
		b := kafka.Message{Key: []byte("b@y.com")}
		aFirst := balancer.Balance(a, 0, 1, 2)
		balancer.Balance(b, 0, 1, 2)
		balancer.Balance(b, 0, 1, 2)
		assert.Equal(t, aFirst, balancer.Balance(a, 0, 1, 2), "other conversations' volume never moves a key")
	})
}
