package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/go-chat-orderflow/internal/aws"
)

var (
	// ErrOrderExists is returned when an order id is already taken.
	ErrOrderExists = errors.New("order already exists")
	// ErrDuplicateSubmission is returned when the submission key is already in the ledger.
	ErrDuplicateSubmission = errors.New("submission key already recorded")
	// ErrAlreadyNotified is returned when staff were already told about the order.
	ErrAlreadyNotified = errors.New("order already notified")
	// ErrNotFound is returned by updates on a missing order.
	ErrNotFound = errors.New("order not found")
)

// Store encapsulates operations on the orders table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	retention time.Duration
	nowFunc   func() time.Time
}

// NewStore creates a new orders Store. Orders expire from the table after
// retention; zero keeps them forever.
func NewStore(client aws.DynamoDBAPI, tableName string, retention time.Duration) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		retention: retention,
		nowFunc:   time.Now,
	}
}

func (s *Store) marshal(order *Order) (map[string]types.AttributeValue, error) {
	now := s.nowFunc()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	if order.Status == "" {
		order.Status = StatusNew
	}
	if s.retention > 0 && order.ExpiresAt == 0 {
		order.ExpiresAt = order.CreatedAt.Add(s.retention).Unix()
	}
	item, err := attributevalue.MarshalMap(order)
	if err != nil {
		return nil, fmt.Errorf("marshal order item: %w", err)
	}
	return item, nil
}

// Create stores an order that is not submitted anywhere.
func (s *Store) Create(ctx context.Context, order *Order) error {
	item, err := s.marshal(order)
	if err != nil {
		return err
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(order_id)"),
	})
	if err != nil {
		var cf *types.ConditionalCheckFailedException
		if errors.As(err, &cf) {
			return ErrOrderExists
		}
		return fmt.Errorf("put order: %w", err)
	}
	return nil
}

// CreateWithSubmission atomically creates:
//   - the submission ledger record in ledgerTable (attribute_not_exists(idempotency_key))
//   - the order record in the orders table (attribute_not_exists(order_id))
//
// ledgerItem must marshal with an idempotency_key attribute.
func (s *Store) CreateWithSubmission(ctx context.Context, ledgerTable string, ledgerItem any, order *Order) error {
	ledgerMap, err := attributevalue.MarshalMap(ledgerItem)
	if err != nil {
		return fmt.Errorf("marshal ledger item: %w", err)
	}
	if _, ok := ledgerMap["idempotency_key"]; !ok {
		return errors.New("ledger item has no idempotency_key")
	}
	orderMap, err := s.marshal(order)
	if err != nil {
		return err
	}

	_, err = s.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           &ledgerTable,
					Item:                ledgerMap,
					ConditionExpression: awsString("attribute_not_exists(idempotency_key)"),
				},
			},
			{
				Put: &types.Put{
					TableName:           &s.tableName,
					Item:                orderMap,
					ConditionExpression: awsString("attribute_not_exists(order_id)"),
				},
			},
		},
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			return cancellationError(tce)
		}
		return fmt.Errorf("transact write: %w", err)
	}
	return nil
}

func cancellationError(tce *types.TransactionCanceledException) error {
	for i, r := range tce.CancellationReasons {
		if r.Code == nil || *r.Code != "ConditionalCheckFailed" {
			continue
		}
		if i == 0 {
			return ErrDuplicateSubmission
		}
		return ErrOrderExists
	}
	return fmt.Errorf("transaction canceled: %w", tce)
}

// Get fetches an order by order_id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, orderID string) (*Order, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key:       orderKey(orderID),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var o Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// RecordSubmission stores the CRM outcome on an existing order.
func (s *Store) RecordSubmission(ctx context.Context, orderID string, sub Submission) error {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              orderKey(orderID),
		UpdateExpression: awsString("SET submission_status = :ss, foreign_order_id = :fid, submission_error = :se, updated_at = :ua"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ss":  &types.AttributeValueMemberS{Value: sub.Status},
			":fid": &types.AttributeValueMemberS{Value: sub.ForeignOrderID},
			":se":  &types.AttributeValueMemberS{Value: sub.Error},
			":ua":  &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
		},
		ConditionExpression: awsString("attribute_exists(order_id)"),
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		var cf *types.ConditionalCheckFailedException
		if errors.As(err, &cf) {
			return ErrNotFound
		}
		return fmt.Errorf("update item (record submission): %w", err)
	}
	return nil
}

// MarkNotified sets notified_at once. A second call returns ErrAlreadyNotified
// so duplicate queue deliveries can be dropped.
func (s *Store) MarkNotified(ctx context.Context, orderID string) error {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              orderKey(orderID),
		UpdateExpression: awsString("SET notified_at = :na, updated_at = :ua"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":na": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
			":ua": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
		},
		ConditionExpression: awsString("attribute_exists(order_id) AND attribute_not_exists(notified_at)"),
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		var cf *types.ConditionalCheckFailedException
		if errors.As(err, &cf) {
			return ErrAlreadyNotified
		}
		return fmt.Errorf("update item (mark notified): %w", err)
	}
	return nil
}

// IncrementNotifyAttempts bumps the delivery attempt counter and returns the new value.
func (s *Store) IncrementNotifyAttempts(ctx context.Context, orderID string) (int, error) {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              orderKey(orderID),
		UpdateExpression: awsString("SET notify_attempts = if_not_exists(notify_attempts, :zero) + :inc, updated_at = :ua"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":inc":  &types.AttributeValueMemberN{Value: "1"},
			":ua":   &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
		},
		ConditionExpression: awsString("attribute_exists(order_id)"),
		ReturnValues:        types.ReturnValueUpdatedNew,
	}
	out, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var cf *types.ConditionalCheckFailedException
		if errors.As(err, &cf) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("increment notify attempts: %w", err)
	}
	n, ok := out.Attributes["notify_attempts"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, nil
	}
	attempts, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("parse notify attempts: %w", err)
	}
	return attempts, nil
}

func orderKey(orderID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"order_id": &types.AttributeValueMemberS{Value: orderID},
	}
}

func awsString(s string) *string { return &s }
