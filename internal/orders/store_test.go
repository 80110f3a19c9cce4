package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/go-chat-orderflow/internal/aws/awstest"
)

const (
	ordersTable = "orders"
	ledgerTable = "crm-submissions"
)

func newTestStore(t *testing.T) (*Store, *awstest.Dynamo) {
	t.Helper()
	mock := awstest.NewDynamo(map[string]string{
		ordersTable: "order_id",
		ledgerTable: "idempotency_key",
	})
	store := NewStore(mock, ordersTable, 7*24*time.Hour)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.nowFunc = func() time.Time { return now }
	return store, mock
}

func sampleOrder(id string) *Order {
	return &Order{
		OrderID:      id,
		Number:       "120000",
		Customer:     "77001234567",
		Lines:        []Line{{VariantID: "b1_beef", Name: "Дядя сырный", Variant: "Говядина", Price: 2490, Qty: 2}},
		Total:        4980,
		Address:      "Абая 10, кв 5",
		ContactPhone: "87001234567",
		Payment:      "Kaspi",
		Comment:      "—",
	}
}

func TestCreate_Get(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	order := sampleOrder("order-1")
	if err := store.Create(ctx, order); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := store.Create(ctx, sampleOrder("order-1")); !errors.Is(err, ErrOrderExists) {
		t.Fatalf("expected ErrOrderExists, got %v", err)
	}

	got, err := store.Get(ctx, "order-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got == nil {
		t.Fatalf("expected order, got nil")
	}
	if got.Status != StatusNew {
		t.Fatalf("expected status new, got %s", got.Status)
	}
	if len(got.Lines) != 1 || got.Lines[0].Sum() != 4980 || got.Total != 4980 {
		t.Fatalf("unexpected lines %+v total %d", got.Lines, got.Total)
	}
	if got.ExpiresAt != got.CreatedAt.Add(7*24*time.Hour).Unix() {
		t.Fatalf("expires_at not derived from retention")
	}

	missing, err := store.Get(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected (nil, nil) for missing order, got %v, %v", missing, err)
	}
}

type ledgerRecord struct {
	IdempotencyKey string `dynamodbav:"idempotency_key"`
	OrderID        string `dynamodbav:"order_id"`
	Status         string `dynamodbav:"status"`
}

func TestCreateWithSubmission_Success(t *testing.T) {
	store, mock := newTestStore(t)
	ctx := context.Background()

	order := sampleOrder("order-1")
	order.IdempotencyKey = "key-1"
	err := store.CreateWithSubmission(ctx, ledgerTable, ledgerRecord{IdempotencyKey: "key-1", OrderID: "order-1", Status: "IN_PROGRESS"}, order)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if mock.Item(ordersTable, "order-1") == nil {
		t.Fatalf("order missing from orders table")
	}
	item := mock.Item(ledgerTable, "key-1")
	if item == nil {
		t.Fatalf("ledger record missing")
	}
	var rec ledgerRecord
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil || rec.OrderID != "order-1" {
		t.Fatalf("unexpected ledger record %+v (%v)", rec, err)
	}
}

func TestCreateWithSubmission_Conflicts(t *testing.T) {
	store, mock := newTestStore(t)
	ctx := context.Background()

	first := sampleOrder("order-1")
	if err := store.CreateWithSubmission(ctx, ledgerTable, ledgerRecord{IdempotencyKey: "key-1", OrderID: "order-1"}, first); err != nil {
		t.Fatalf("first create: %v", err)
	}

	err := store.CreateWithSubmission(ctx, ledgerTable, ledgerRecord{IdempotencyKey: "key-1", OrderID: "order-2"}, sampleOrder("order-2"))
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("expected ErrDuplicateSubmission, got %v", err)
	}
	err = store.CreateWithSubmission(ctx, ledgerTable, ledgerRecord{IdempotencyKey: "key-2", OrderID: "order-1"}, sampleOrder("order-1"))
	if !errors.Is(err, ErrOrderExists) {
		t.Fatalf("expected ErrOrderExists, got %v", err)
	}
	if mock.Count(ledgerTable) != 1 || mock.Count(ordersTable) != 1 {
		t.Fatalf("cancelled transactions must not write")
	}
}

func TestCreateWithSubmission_LedgerWithoutKey(t *testing.T) {
	store, _ := newTestStore(t)
	err := store.CreateWithSubmission(context.Background(), ledgerTable, map[string]string{"x": "y"}, sampleOrder("order-1"))
	if err == nil {
		t.Fatalf("expected error for ledger item without key")
	}
}

func TestRecordSubmission(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	if err := store.Create(ctx, sampleOrder("order-1")); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	err := store.RecordSubmission(ctx, "order-1", Submission{Status: SubmissionSubmitted, ForeignOrderID: "1234"})
	if err != nil {
		t.Fatalf("RecordSubmission error: %v", err)
	}
	got, _ := store.Get(ctx, "order-1")
	if got.SubmissionStatus != SubmissionSubmitted || got.ForeignOrderID != "1234" {
		t.Fatalf("submission not recorded: %+v", got)
	}

	if err := store.RecordSubmission(ctx, "missing", Submission{Status: SubmissionFailed}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMarkNotified_Once(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	if err := store.Create(ctx, sampleOrder("order-1")); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := store.MarkNotified(ctx, "order-1"); err != nil {
		t.Fatalf("MarkNotified error: %v", err)
	}
	if err := store.MarkNotified(ctx, "order-1"); !errors.Is(err, ErrAlreadyNotified) {
		t.Fatalf("expected ErrAlreadyNotified, got %v", err)
	}
	got, _ := store.Get(ctx, "order-1")
	if got.NotifiedAt == nil {
		t.Fatalf("notified_at not set")
	}
}

func TestIncrementNotifyAttempts(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	if err := store.Create(ctx, sampleOrder("order-1")); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	for want := 1; want <= 3; want++ {
		n, err := store.IncrementNotifyAttempts(ctx, "order-1")
		if err != nil {
			t.Fatalf("IncrementNotifyAttempts error: %v", err)
		}
		if n != want {
			t.Fatalf("expected %d attempts, got %d", want, n)
		}
	}
	if _, err := store.IncrementNotifyAttempts(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGet_StoreError(t *testing.T) {
	store, mock := newTestStore(t)
	mock.Errs["GetItem"] = &types.InternalServerError{Message: awsString("boom")}
	if _, err := store.Get(context.Background(), "order-1"); err == nil {
		t.Fatalf("expected error")
	}
}
