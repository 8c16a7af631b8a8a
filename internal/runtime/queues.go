package runtime

import (
	"context"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/c-fraser/connekted/internal/runtime/ids"
	"github.com/c-fraser/connekted/internal/runtime/logging"
	"github.com/c-fraser/connekted/transport"
)

// Queues gives components a narrow view of the shared transport: publish a
// payload to a named queue, subscribe to a named queue. It also keeps
// transport-level counters, independent of the per-component ones.
type Queues struct {
	transport transport.Transport
	logger    logging.ServiceLogger

	published     atomic.Uint64
	publishErrors atomic.Uint64
	consumed      atomic.Uint64
}

// QueueMetrics is a snapshot of transport-level traffic counters.
type QueueMetrics struct {
	Published     uint64 `json:"published"`
	PublishErrors uint64 `json:"publish_errors"`
	Consumed      uint64 `json:"consumed"`
}

// NewQueues wraps a transport for component use.
func NewQueues(t transport.Transport, logger logging.ServiceLogger) *Queues {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Queues{transport: t, logger: logger}
}

// Publish sends a payload to the named queue and returns the assigned
// message id.
func (q *Queues) Publish(queue string, payload []byte) (string, error) {
	msg := message.NewMessage(ids.NewMessageID(), payload)
	if err := q.transport.Publisher.Publish(queue, msg); err != nil {
		q.publishErrors.Add(1)
		q.logger.Error("Publish failed", err, logging.LogFields{
			"queue":      queue,
			"message_id": msg.UUID,
		})
		return "", err
	}
	q.published.Add(1)
	return msg.UUID, nil
}

// Subscribe returns a channel of inbound messages for the named queue. The
// channel closes when ctx is cancelled or the transport shuts down. Consumers
// must ack or nack every message they take from the channel.
func (q *Queues) Subscribe(ctx context.Context, queue string) (<-chan *message.Message, error) {
	messages, err := q.transport.Subscriber.Subscribe(ctx, queue)
	if err != nil {
		return nil, err
	}

	out := make(chan *message.Message)
	go func() {
		defer close(out)
		for msg := range messages {
			q.consumed.Add(1)
			select {
			case out <- msg:
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()
	return out, nil
}

// Metrics returns a snapshot of the transport-level counters.
func (q *Queues) Metrics() QueueMetrics {
	return QueueMetrics{
		Published:     q.published.Load(),
		PublishErrors: q.publishErrors.Load(),
		Consumed:      q.consumed.Load(),
	}
}

// Close closes the underlying publisher and subscriber. The first error wins;
// both are always attempted.
func (q *Queues) Close() error {
	pubErr := q.transport.Publisher.Close()
	subErr := q.transport.Subscriber.Close()
	if pubErr != nil {
		return pubErr
	}
	return subErr
}
