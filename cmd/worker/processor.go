package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-chat-orderflow/internal/notify"
	"github.com/imrishuroy/go-chat-orderflow/internal/observability"
	"github.com/imrishuroy/go-chat-orderflow/internal/orders"
)

// orderStore is the slice of orders.Store the worker needs.
type orderStore interface {
	Get(ctx context.Context, orderID string) (*orders.Order, error)
	MarkNotified(ctx context.Context, orderID string) error
	IncrementNotifyAttempts(ctx context.Context, orderID string) (int, error)
}

// chatSender posts a formatted text to the staff chat.
type chatSender interface {
	Send(ctx context.Context, text string) error
}

// Processor delivers queued staff notifications.
type Processor struct {
	orders orderStore
	chat   chatSender
}

func NewProcessor(store orderStore, chat chatSender) *Processor {
	return &Processor{orders: store, chat: chat}
}

// Handle processes an SQS batch. Failed records are reported individually so
// only they are redelivered; after the queue's receive limit they land in the DLQ.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	logger := observability.FromContext(ctx)
	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			logger.Error("notification delivery failed",
				zap.String("sqs_message_id", rec.MessageId), zap.Error(err))
			resp.BatchItemFailures = append(resp.BatchItemFailures,
				events.SQSBatchItemFailure{ItemIdentifier: rec.MessageId})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	carrier := map[string]string{}
	for name, attr := range rec.MessageAttributes {
		if attr.StringValue != nil {
			carrier[name] = *attr.StringValue
		}
	}
	ctx, span := observability.StartSpan(observability.Extract(ctx, carrier), "notify staff",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(attribute.String("sqs_message_id", rec.MessageId)))
	defer span.End()

	var msg notify.Message
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	logger := observability.FromContext(ctx).With(
		zap.String("order_id", msg.OrderID), zap.String("order_number", msg.Number))

	order, err := p.orders.Get(ctx, msg.OrderID)
	if err != nil {
		return fmt.Errorf("fetch order: %w", err)
	}
	if order == nil {
		// The order write failed upstream; staff still need to hear about it.
		logger.Warn("order not persisted, sending without tracking")
		return p.chat.Send(ctx, msg.Text)
	}
	if order.NotifiedAt != nil {
		logger.Info("duplicate notification dropped")
		return nil
	}

	if err := p.chat.Send(ctx, msg.Text); err != nil {
		attempts, incErr := p.orders.IncrementNotifyAttempts(ctx, msg.OrderID)
		if incErr != nil {
			logger.Error("record notify attempt failed", zap.Error(incErr))
		}
		return fmt.Errorf("send to chat (attempt %d): %w", attempts, err)
	}

	switch err := p.orders.MarkNotified(ctx, msg.OrderID); {
	case errors.Is(err, orders.ErrAlreadyNotified):
		logger.Info("order was notified concurrently")
	case err != nil:
		// Delivered; a redelivery would spam the chat, so do not fail the record.
		logger.Error("mark notified failed", zap.Error(err))
	default:
		logger.Info("staff notified")
	}
	return nil
}
