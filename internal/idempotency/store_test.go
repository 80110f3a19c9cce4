package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/go-chat-orderflow/internal/aws/awstest"
)

const table = "crm-submissions"

func newTestStore(t *testing.T) (*Store, *awstest.Dynamo) {
	t.Helper()
	mock := awstest.NewDynamo(map[string]string{table: "idempotency_key"})
	s := NewStore(mock, table, 7*24*time.Hour)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.nowFunc = func() time.Time { return now }
	return s, mock
}

func put(t *testing.T, mock *awstest.Dynamo, rec Record) {
	t.Helper()
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := mock.PutItem(context.Background(), &dyn.PutItemInput{TableName: awsString(table), Item: item}); err != nil {
		t.Fatalf("put: %v", err)
	}
}

func TestNewRecord(t *testing.T) {
	s, _ := newTestStore(t)
	rec := s.NewRecord("key-1", "order-1", "77001234567")
	if rec.Status != StatusInProgress || rec.OrderID != "order-1" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.ExpiresAt != rec.CreatedAt.Add(7*24*time.Hour).Unix() {
		t.Fatalf("expires_at not derived from ttl window")
	}
	if s.TableName() != table {
		t.Fatalf("table name mismatch")
	}
}

func TestGet_MarkDone(t *testing.T) {
	s, mock := newTestStore(t)
	ctx := context.Background()
	put(t, mock, s.NewRecord("key-1", "order-1", "77001234567"))

	rec, err := s.Get(ctx, "key-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec == nil || rec.Status != StatusInProgress {
		t.Fatalf("expected IN_PROGRESS record, got %+v", rec)
	}

	if err := s.MarkDone(ctx, "key-1", "1234", 201); err != nil {
		t.Fatalf("MarkDone error: %v", err)
	}
	item := mock.Item(table, "key-1")
	if st, ok := item["status"].(*types.AttributeValueMemberS); !ok || st.Value != StatusDone {
		t.Fatalf("status not updated to DONE, got %+v", item["status"])
	}
	if fid, ok := item["foreign_order_id"].(*types.AttributeValueMemberS); !ok || fid.Value != "1234" {
		t.Fatalf("foreign_order_id not set correctly: %+v", item["foreign_order_id"])
	}

	// a finished entry cannot be finished again
	if err := s.MarkFailed(ctx, "key-1", "late failure", 500); !errors.Is(err, ErrConditionFailed) {
		t.Fatalf("expected ErrConditionFailed, got %v", err)
	}
}

func TestMarkFailed(t *testing.T) {
	s, mock := newTestStore(t)
	ctx := context.Background()
	put(t, mock, s.NewRecord("key-1", "order-1", ""))

	if err := s.MarkFailed(ctx, "key-1", "bad phone", 422); err != nil {
		t.Fatalf("MarkFailed error: %v", err)
	}
	rec, _ := s.Get(ctx, "key-1")
	if rec.Status != StatusFailed || rec.Note != "bad phone" || rec.ResponseStatus != 422 {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestMarkDone_MissingEntry(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.MarkDone(context.Background(), "nope", "", 200); !errors.Is(err, ErrConditionFailed) {
		t.Fatalf("expected ErrConditionFailed, got %v", err)
	}
}

func TestGet_Missing(t *testing.T) {
	s, _ := newTestStore(t)
	rec, err := s.Get(context.Background(), "nope")
	if err != nil || rec != nil {
		t.Fatalf("expected (nil, nil), got %v, %v", rec, err)
	}
}

func TestMarkDone_StoreError(t *testing.T) {
	s, mock := newTestStore(t)
	mock.Errs["UpdateItem"] = errors.New("network down")
	err := s.MarkDone(context.Background(), "key-1", "", 200)
	if err == nil || errors.Is(err, ErrConditionFailed) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
