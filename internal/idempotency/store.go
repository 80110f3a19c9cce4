// Package idempotency keeps the ledger of CRM submission attempts. Every
// attempt gets a fresh token; the ledger records which order it carried and
// how the CRM answered.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/imrishuroy/go-chat-orderflow/internal/aws"
)

// ErrConditionFailed indicates the entry is missing or no longer IN_PROGRESS.
var ErrConditionFailed = errors.New("conditional check failed")

// Store encapsulates ledger operations against DynamoDB.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	ttlWindow time.Duration
	nowFunc   func() time.Time
}

// NewStore returns a configured Store.
// ttlWindow: how long entries live before DynamoDB TTL removes them (e.g. 7 days).
func NewStore(client aws.DynamoDBAPI, tableName string, ttlWindow time.Duration) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

// TableName is the ledger table, for callers building multi-table transactions.
func (s *Store) TableName() string {
	return s.tableName
}

// NewRecord returns an IN_PROGRESS entry for key. It is written by the
// caller, usually inside the transaction that creates the order.
func (s *Store) NewRecord(key, orderID, customer string) Record {
	now := s.nowFunc()
	return Record{
		IdempotencyKey: key,
		Status:         StatusInProgress,
		OrderID:        orderID,
		Customer:       customer,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(s.ttlWindow).Unix(),
	}
}

// Get retrieves an entry by key. If not found, returns (nil, nil).
func (s *Store) Get(ctx context.Context, key string) (*Record, error) {
	input := &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"idempotency_key": &types.AttributeValueMemberS{Value: key},
		},
	}
	out, err := s.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &rec, nil
}

// MarkDone moves an IN_PROGRESS entry to DONE with the CRM order id and status.
func (s *Store) MarkDone(ctx context.Context, key, foreignOrderID string, responseStatus int) error {
	return s.finish(ctx, key, "SET #s = :done, foreign_order_id = :fid, response_status = :rs, updated_at = :ua",
		map[string]types.AttributeValue{
			":done": &types.AttributeValueMemberS{Value: StatusDone},
			":fid":  &types.AttributeValueMemberS{Value: foreignOrderID},
			":rs":   &types.AttributeValueMemberN{Value: strconv.Itoa(responseStatus)},
		}, "mark done")
}

// MarkFailed moves an IN_PROGRESS entry to FAILED with the CRM error.
func (s *Store) MarkFailed(ctx context.Context, key, note string, responseStatus int) error {
	return s.finish(ctx, key, "SET #s = :failed, note = :n, response_status = :rs, updated_at = :ua",
		map[string]types.AttributeValue{
			":failed": &types.AttributeValueMemberS{Value: StatusFailed},
			":n":      &types.AttributeValueMemberS{Value: note},
			":rs":     &types.AttributeValueMemberN{Value: strconv.Itoa(responseStatus)},
		}, "mark failed")
}

func (s *Store) finish(ctx context.Context, key, expr string, values map[string]types.AttributeValue, op string) error {
	values[":ua"] = &types.AttributeValueMemberS{Value: s.nowFunc().Format(time.RFC3339Nano)}
	values[":inprogress"] = &types.AttributeValueMemberS{Value: StatusInProgress}
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"idempotency_key": &types.AttributeValueMemberS{Value: key},
		},
		UpdateExpression: awsString(expr),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: values,
		ConditionExpression:       awsString("#s = :inprogress"),
		ReturnValues:              types.ReturnValueUpdatedNew,
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return ErrConditionFailed
		}
		return fmt.Errorf("update item (%s): %w", op, err)
	}
	return nil
}

// Helper
func awsString(s string) *string { return &s }
