package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-chat-orderflow/internal/dialogue"
	"github.com/imrishuroy/go-chat-orderflow/internal/idempotency"
	"github.com/imrishuroy/go-chat-orderflow/internal/observability"
	"github.com/imrishuroy/go-chat-orderflow/internal/orders"
	"github.com/imrishuroy/go-chat-orderflow/internal/present"
	"github.com/imrishuroy/go-chat-orderflow/internal/session"
)

type recordingDialogue struct {
	events [][2]string
	panics bool
}

func (d *recordingDialogue) Handle(ctx context.Context, identity, text string) dialogue.Outcome {
	if d.panics {
		panic("boom")
	}
	d.events = append(d.events, [2]string{identity, text})
	s := session.New(identity, time.Time{})
	s.State = session.StateMain
	return dialogue.Outcome{
		Session:  s,
		Rule:     "menu",
		Messages: []present.Message{present.Text("reply to " + text), present.Text("second")},
	}
}

type recordingSender struct {
	sent []present.Message
	err  error
}

func (s *recordingSender) Send(ctx context.Context, to string, msg present.Message) error {
	s.sent = append(s.sent, msg)
	return s.err
}

type stubOrders struct {
	order *orders.Order
	err   error
}

func (s stubOrders) Get(ctx context.Context, orderID string) (*orders.Order, error) {
	return s.order, s.err
}

type stubSubmissions struct {
	records map[string]*idempotency.Record
	err     error
}

func (s stubSubmissions) Get(ctx context.Context, key string) (*idempotency.Record, error) {
	return s.records[key], s.err
}

func newRouter(cfg HandlerConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	RegisterWebhookRoutes(r, cfg)
	RegisterOrdersRoutes(r, cfg)
	return r
}

const textDelivery = `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"messages":[
 {"id":"wamid.1","from":"77011234567","type":"text","text":{"body":"меню"}},
 {"id":"wamid.2","from":"77011234567","type":"interactive","interactive":{"type":"list_reply","list_reply":{"id":"cat_burgers","title":"Бургеры"}}}
]}}]}]}`

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func statusOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	status, _ := body["status"].(string)
	return status
}

func TestWebhook_DeliversEventsInOrder(t *testing.T) {
	d := &recordingDialogue{}
	sender := &recordingSender{}
	r := newRouter(HandlerConfig{Dialogue: d, Sender: sender})

	rec := do(r, http.MethodPost, "/webhook", textDelivery)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", statusOf(t, rec))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	assert.Equal(t, [][2]string{{"77011234567", "меню"}, {"77011234567", "cat_burgers"}}, d.events)
	require.Len(t, sender.sent, 4)
	assert.Equal(t, "reply to меню", sender.sent[0].Body)
}

func TestWebhook_SendFailureStillAcknowledged(t *testing.T) {
	sender := &recordingSender{err: errors.New("graph api down")}
	r := newRouter(HandlerConfig{Dialogue: &recordingDialogue{}, Sender: sender})

	rec := do(r, http.MethodPost, "/webhook", textDelivery)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", statusOf(t, rec))
	assert.Len(t, sender.sent, 4)
}

func TestWebhook_BadPayloadAcknowledgedWithError(t *testing.T) {
	d := &recordingDialogue{}
	r := newRouter(HandlerConfig{Dialogue: d, Sender: &recordingSender{}})

	for _, body := range []string{`{not json`, `{"entry":[]}`} {
		rec := do(r, http.MethodPost, "/webhook", body)
		assert.Equal(t, http.StatusOK, rec.Code, body)
		assert.Equal(t, "error", statusOf(t, rec), body)
	}
	assert.Empty(t, d.events)
}

func TestWebhook_ForeignObjectAcknowledgedAndIgnored(t *testing.T) {
	d := &recordingDialogue{}
	sender := &recordingSender{}
	r := newRouter(HandlerConfig{Dialogue: d, Sender: sender})

	body := strings.Replace(textDelivery, "whatsapp_business_account", "page", 1)
	rec := do(r, http.MethodPost, "/webhook", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", statusOf(t, rec))
	assert.Empty(t, d.events)
	assert.Empty(t, sender.sent)
}

func TestWebhook_PanicAcknowledgedWithError(t *testing.T) {
	r := newRouter(HandlerConfig{Dialogue: &recordingDialogue{panics: true}, Sender: &recordingSender{}})

	rec := do(r, http.MethodPost, "/webhook", textDelivery)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "error", statusOf(t, rec))
}

func TestWebhook_Verify(t *testing.T) {
	r := newRouter(HandlerConfig{VerifyToken: "s3cret"})

	rec := do(r, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=s3cret&hub.challenge=8812", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "8812", rec.Body.String())

	rec = do(r, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=guess&hub.challenge=8812", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(r, http.MethodGet, "/webhook", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOrders_Get(t *testing.T) {
	const id = "3f1c7a52-8d4e-4b7a-9c1e-2f6b8a0d4e11"

	found := newRouter(HandlerConfig{Orders: stubOrders{order: &orders.Order{OrderID: id, Number: "104512", Total: 4580}}})
	rec := do(found, http.MethodGet, "/orders/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "104512", got.Number)
	assert.Equal(t, int64(4580), got.Total)

	missing := newRouter(HandlerConfig{Orders: stubOrders{}})
	assert.Equal(t, http.StatusNotFound, do(missing, http.MethodGet, "/orders/"+id, "").Code)

	broken := newRouter(HandlerConfig{Orders: stubOrders{err: errors.New("throttled")}})
	assert.Equal(t, http.StatusInternalServerError, do(broken, http.MethodGet, "/orders/"+id, "").Code)

	assert.Equal(t, http.StatusBadRequest, do(found, http.MethodGet, "/orders/not-a-uuid", "").Code)
}

func TestRequestLogger_JoinsCallerTrace(t *testing.T) {
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	shutdown, err := observability.InitTracing(context.Background(), "orderflow-api-test", "")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = shutdown(context.Background())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	var seen string
	r.GET("/traced", func(c *gin.Context) {
		seen = observability.TraceID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	req := httptest.NewRequest(http.MethodGet, "/traced", nil)
	req.Header.Set("traceparent", "00-"+traceID+"-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, traceID, seen)
}

func TestOrders_GetSubmission(t *testing.T) {
	const id = "3f1c7a52-8d4e-4b7a-9c1e-2f6b8a0d4e11"
	submitted := &orders.Order{OrderID: id, Number: "104512", IdempotencyKey: "tok-1"}
	ledger := stubSubmissions{records: map[string]*idempotency.Record{
		"tok-1": {IdempotencyKey: "tok-1", Status: idempotency.StatusDone, OrderID: id, ForeignOrderID: "991", ResponseStatus: 201},
	}}

	r := newRouter(HandlerConfig{Orders: stubOrders{order: submitted}, Submissions: ledger})
	rec := do(r, http.MethodGet, "/orders/"+id+"/submission", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "DONE", got["status"])
	assert.Equal(t, "991", got["foreign_order_id"])
	assert.NotContains(t, got, "expires_at")

	unsubmitted := newRouter(HandlerConfig{Orders: stubOrders{order: &orders.Order{OrderID: id}}, Submissions: ledger})
	assert.Equal(t, http.StatusNotFound, do(unsubmitted, http.MethodGet, "/orders/"+id+"/submission", "").Code)

	lost := newRouter(HandlerConfig{Orders: stubOrders{order: submitted}, Submissions: stubSubmissions{}})
	assert.Equal(t, http.StatusNotFound, do(lost, http.MethodGet, "/orders/"+id+"/submission", "").Code)

	broken := newRouter(HandlerConfig{Orders: stubOrders{order: submitted}, Submissions: stubSubmissions{err: errors.New("throttled")}})
	assert.Equal(t, http.StatusInternalServerError, do(broken, http.MethodGet, "/orders/"+id+"/submission", "").Code)
}
