// Package checkout turns a confirmed session into a persisted order and a
// CRM submission.
package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-chat-orderflow/internal/aws"
	"github.com/imrishuroy/go-chat-orderflow/internal/crm"
	"github.com/imrishuroy/go-chat-orderflow/internal/idempotency"
	"github.com/imrishuroy/go-chat-orderflow/internal/notify"
	"github.com/imrishuroy/go-chat-orderflow/internal/observability"
	"github.com/imrishuroy/go-chat-orderflow/internal/orders"
	"github.com/imrishuroy/go-chat-orderflow/internal/session"
)

// Submitter sends assembled payloads to the CRM.
type Submitter interface {
	Configured() bool
	Submit(ctx context.Context, p *crm.Payload) crm.Result
}

// Receipt is the result of placing an order. Submission carries the CRM
// outcome; a failed submission still yields an order.
type Receipt struct {
	Order      *orders.Order
	Submission crm.Result
}

// Service places orders.
type Service struct {
	orders    *orders.Store
	ledger    *idempotency.Store
	assembler *crm.Assembler
	crm       Submitter
	notifier  notify.Notifier
	metrics   *aws.Metrics
	newID     func() string
	nowFunc   func() time.Time
}

type Option func(*Service)

// WithNotifier sets the staff notification sink.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithMetrics sets the CloudWatch emitter.
func WithMetrics(m *aws.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source used for order numbers and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.nowFunc = now }
}

// WithIDSource overrides the order id generator.
func WithIDSource(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

func NewService(orderStore *orders.Store, ledger *idempotency.Store, assembler *crm.Assembler, client Submitter, opts ...Option) *Service {
	s := &Service{
		orders:    orderStore,
		ledger:    ledger,
		assembler: assembler,
		crm:       client,
		newID:     func() string { return uuid.NewString() },
		nowFunc:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot builds the order record for a confirmed session.
func (s *Service) Snapshot(sess *session.Session) *orders.Order {
	now := s.nowFunc()
	lines := make([]orders.Line, 0, len(sess.Cart))
	var total int64
	for _, l := range sess.Cart {
		lines = append(lines, orders.Line{
			VariantID: l.VariantID,
			Name:      l.Name.RU,
			Variant:   l.Variant.RU,
			Price:     l.Price,
			Qty:       l.Qty,
		})
		total += l.Sum()
	}
	return &orders.Order{
		OrderID:      s.newID(),
		Number:       now.Format("150405"),
		Customer:     sess.Identity,
		Lang:         string(sess.Lang),
		Lines:        lines,
		Total:        total,
		Address:      sess.Order.Address,
		ContactPhone: sess.Order.Phone,
		Payment:      sess.Order.Payment,
		Comment:      sess.Order.Comment,
		Status:       orders.StatusNew,
		CreatedAt:    now,
	}
}

func draftOf(o *orders.Order) crm.Draft {
	phone := o.ContactPhone
	if phone == "" {
		phone = o.Customer
	}
	d := crm.Draft{
		Phone:   phone,
		Address: o.Address,
		Payment: o.Payment,
		Comment: o.Comment,
		Lines:   make([]crm.Line, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		d.Lines = append(d.Lines, crm.Line{VariantID: l.VariantID, Qty: l.Qty, Price: l.Price})
	}
	return d
}

// Place persists the order, submits it to the CRM once and records the
// outcome. Storage, notification and metric failures are logged only.
func (s *Service) Place(ctx context.Context, sess *session.Session) *Receipt {
	logger := observability.FromContext(ctx).With(zap.String("customer", sess.Identity))
	order := s.Snapshot(sess)
	logger = logger.With(zap.String("order_id", order.OrderID), zap.String("order_number", order.Number))

	var result crm.Result
	payload, err := s.prepare(ctx, order)
	if err != nil {
		result = crm.Failed(err)
		order.SubmissionStatus = orders.SubmissionSkipped
		order.SubmissionError = result.Error
		logger.Warn("crm submission skipped", zap.Error(err))
		if err := s.orders.Create(ctx, order); err != nil {
			logger.Error("persist order failed", zap.Error(err))
		}
	} else {
		result = s.submit(ctx, logger, order, payload)
	}

	s.emit(ctx, logger, order)
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, order); err != nil {
			logger.Error("staff notification failed", zap.Error(err))
		}
	}
	logger.Info("order placed",
		zap.Int64("total", order.Total),
		zap.String("submission_status", order.SubmissionStatus))
	return &Receipt{Order: order, Submission: result}
}

// prepare checks credentials before anything draws an idempotency token.
func (s *Service) prepare(ctx context.Context, order *orders.Order) (*crm.Payload, error) {
	if s.crm == nil || !s.crm.Configured() {
		return nil, crm.ErrMissingToken
	}
	return s.assembler.Assemble(ctx, draftOf(order))
}

func (s *Service) submit(ctx context.Context, logger *zap.Logger, order *orders.Order, payload *crm.Payload) crm.Result {
	key := payload.UUID
	order.IdempotencyKey = key
	order.SubmissionStatus = orders.SubmissionPending

	persisted := true
	record := s.ledger.NewRecord(key, order.OrderID, order.Customer)
	if err := s.orders.CreateWithSubmission(ctx, s.ledger.TableName(), record, order); err != nil {
		persisted = false
		logger.Error("persist order with submission failed", zap.Error(err))
	}

	result := s.crm.Submit(ctx, payload)
	sub := orders.Submission{ForeignOrderID: result.ForeignOrderID, Error: result.Error}
	if result.Success {
		sub.Status = orders.SubmissionSubmitted
	} else {
		sub.Status = orders.SubmissionFailed
	}
	order.SubmissionStatus = sub.Status
	order.ForeignOrderID = sub.ForeignOrderID
	order.SubmissionError = sub.Error

	if !persisted {
		return result
	}
	var ledgerErr error
	if result.Success {
		ledgerErr = s.ledger.MarkDone(ctx, key, result.ForeignOrderID, result.Status)
	} else {
		ledgerErr = s.ledger.MarkFailed(ctx, key, result.Error, result.Status)
	}
	if ledgerErr != nil {
		logger.Error("update submission ledger failed", zap.String("idempotency_key", key), zap.Error(ledgerErr))
	}
	if err := s.orders.RecordSubmission(ctx, order.OrderID, sub); err != nil {
		logger.Error("record submission on order failed", zap.Error(err))
	}
	return result
}

func (s *Service) emit(ctx context.Context, logger *zap.Logger, order *orders.Order) {
	if s.metrics == nil {
		return
	}
	dims := map[string]string{"Channel": "whatsapp"}
	errs := []error{
		s.metrics.Count(ctx, aws.MetricOrdersPlaced, 1, dims),
		s.metrics.Value(ctx, aws.MetricOrderValue, float64(order.Total), dims),
	}
	switch order.SubmissionStatus {
	case orders.SubmissionFailed:
		errs = append(errs, s.metrics.Count(ctx, aws.MetricSubmissionsFailed, 1, dims))
	case orders.SubmissionSkipped:
		errs = append(errs, s.metrics.Count(ctx, aws.MetricSubmissionsSkipped, 1, dims))
	}
	if err := errors.Join(errs...); err != nil {
		logger.Warn("emit order metrics failed", zap.Error(err))
	}
}
