package notify

import (
	"context"
	"fmt"

	"github.com/imrishuroy/go-chat-orderflow/internal/observability"
	"github.com/imrishuroy/go-chat-orderflow/internal/orders"
)

// Message is the SQS body handed to cmd/worker.
type Message struct {
	OrderID string `json:"order_id"`
	Number  string `json:"number"`
	Text    string `json:"text"`
}

type publisher interface {
	Publish(ctx context.Context, v any, attributes map[string]string) (string, error)
}

// Queue defers delivery to the worker by publishing to SQS.
type Queue struct {
	pub publisher
}

func NewQueue(pub publisher) *Queue {
	return &Queue{pub: pub}
}

// Notify enqueues the rendered summary. The trace context travels in the
// message attributes so the worker continues the same trace.
func (q *Queue) Notify(ctx context.Context, order *orders.Order) error {
	msg := Message{OrderID: order.OrderID, Number: order.Number, Text: Summary(order)}
	attrs := map[string]string{"kind": "order_created"}
	observability.Inject(ctx, attrs)
	if _, err := q.pub.Publish(ctx, msg, attrs); err != nil {
		return fmt.Errorf("enqueue notification for %s: %w", order.OrderID, err)
	}
	return nil
}
