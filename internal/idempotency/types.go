package idempotency

import "time"

// Status values for submission ledger entries
const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// Record is one CRM submission attempt, keyed by the idempotency token sent
// in the payload.
type Record struct {
	IdempotencyKey string    `dynamodbav:"idempotency_key" json:"idempotency_key"` // PK
	Status         string    `dynamodbav:"status" json:"status"`
	OrderID        string    `dynamodbav:"order_id" json:"order_id"`
	Customer       string    `dynamodbav:"customer,omitempty" json:"customer,omitempty"`
	ForeignOrderID string    `dynamodbav:"foreign_order_id,omitempty" json:"foreign_order_id,omitempty"`
	ResponseStatus int       `dynamodbav:"response_status,omitempty" json:"response_status,omitempty"` // CRM HTTP status
	Note           string    `dynamodbav:"note,omitempty" json:"note,omitempty"`
	CreatedAt      time.Time `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt      time.Time `dynamodbav:"updated_at" json:"updated_at"`
	ExpiresAt      int64     `dynamodbav:"expires_at" json:"-"` // TTL epoch seconds
}
