package orders

import "time"

// StatusNew is the only status this service assigns. Later transitions
// belong to the fulfilment side.
const StatusNew = "new"

// Submission outcomes recorded on an order.
const (
	SubmissionPending   = "PENDING"
	SubmissionSubmitted = "SUBMITTED"
	SubmissionFailed    = "FAILED"
	SubmissionSkipped   = "SKIPPED"
)

// Line is a cart line snapshot taken at checkout.
type Line struct {
	VariantID string `dynamodbav:"variant_id" json:"variant_id"`
	Name      string `dynamodbav:"name" json:"name"`
	Variant   string `dynamodbav:"variant" json:"variant"`
	Price     int64  `dynamodbav:"price" json:"price"`
	Qty       int    `dynamodbav:"qty" json:"qty"`
}

// Sum is the line total.
func (l Line) Sum() int64 {
	return l.Price * int64(l.Qty)
}

// Order represents the item stored in the orders DynamoDB table.
type Order struct {
	OrderID          string     `dynamodbav:"order_id" json:"order_id"` // PK
	Number           string     `dynamodbav:"number" json:"number"`     // shown to the customer
	Customer         string     `dynamodbav:"customer" json:"customer"`
	Lang             string     `dynamodbav:"lang,omitempty" json:"lang,omitempty"`
	Lines            []Line     `dynamodbav:"lines" json:"lines"`
	Total            int64      `dynamodbav:"total" json:"total"`
	Address          string     `dynamodbav:"address" json:"address"`
	ContactPhone     string     `dynamodbav:"contact_phone" json:"contact_phone"`
	Payment          string     `dynamodbav:"payment" json:"payment"`
	Comment          string     `dynamodbav:"comment" json:"comment"`
	Status           string     `dynamodbav:"status" json:"status"`
	IdempotencyKey   string     `dynamodbav:"idempotency_key,omitempty" json:"idempotency_key,omitempty"`
	SubmissionStatus string     `dynamodbav:"submission_status,omitempty" json:"submission_status,omitempty"`
	ForeignOrderID   string     `dynamodbav:"foreign_order_id,omitempty" json:"foreign_order_id,omitempty"`
	SubmissionError  string     `dynamodbav:"submission_error,omitempty" json:"submission_error,omitempty"`
	NotifiedAt       *time.Time `dynamodbav:"notified_at,omitempty" json:"notified_at,omitempty"`
	NotifyAttempts   int        `dynamodbav:"notify_attempts,omitempty" json:"notify_attempts,omitempty"`
	CreatedAt        time.Time  `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `dynamodbav:"updated_at" json:"updated_at"`
	ExpiresAt        int64      `dynamodbav:"expires_at,omitempty" json:"-"`
}

// Submission is the CRM outcome recorded on an order.
type Submission struct {
	Status         string
	ForeignOrderID string
	Error          string
}
