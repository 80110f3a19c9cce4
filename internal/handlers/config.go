package handlers

import (
	"context"

	"github.com/imrishuroy/go-chat-orderflow/internal/dialogue"
	"github.com/imrishuroy/go-chat-orderflow/internal/idempotency"
	"github.com/imrishuroy/go-chat-orderflow/internal/orders"
	"github.com/imrishuroy/go-chat-orderflow/internal/present"
)

// Dialogue applies one inbound customer event.
type Dialogue interface {
	Handle(ctx context.Context, identity, text string) dialogue.Outcome
}

// Sender delivers a reply to a customer.
type Sender interface {
	Send(ctx context.Context, to string, msg present.Message) error
}

// OrderReader loads persisted orders.
type OrderReader interface {
	Get(ctx context.Context, orderID string) (*orders.Order, error)
}

// SubmissionReader loads CRM submission ledger entries.
type SubmissionReader interface {
	Get(ctx context.Context, key string) (*idempotency.Record, error)
}

// HandlerConfig groups dependencies for the HTTP handlers.
type HandlerConfig struct {
	Dialogue    Dialogue
	Sender      Sender
	Orders      OrderReader
	Submissions SubmissionReader
	VerifyToken string
}
