package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/imrishuroy/go-chat-orderflow/internal/observability"
)

// ErrMissingToken is returned when no CRM bearer token is configured.
var ErrMissingToken = errors.New("crm token not set")

const maxErrorBody = 500

// Result is the outcome of one submission attempt.
type Result struct {
	Success        bool   `json:"success"`
	ForeignOrderID string `json:"foreign_order_id,omitempty"`
	Status         int    `json:"status,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Failed wraps a local error as an unsuccessful Result.
func Failed(err error) Result {
	return Result{Error: err.Error()}
}

// Client posts orders to the CRM. It never retries.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: observability.NewHTTPClient(timeout),
	}
}

// Configured reports whether a bearer token is present.
func (c *Client) Configured() bool {
	return c != nil && c.token != ""
}

type orderResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Submit sends the payload. Success needs a 200/201 answer whose body carries
// success=true. The foreign id is read from data.id or data.data.id.
func (c *Client) Submit(ctx context.Context, p *Payload) Result {
	logger := observability.FromContext(ctx)
	if !c.Configured() {
		logger.Warn("crm: token not set, submission skipped")
		return Failed(ErrMissingToken)
	}

	body, err := json.Marshal(p)
	if err != nil {
		return Failed(fmt.Errorf("marshal payload: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/order/orders", bytes.NewReader(body))
	if err != nil {
		return Failed(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("crm: request failed", zap.Error(err))
		return Failed(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Status: resp.StatusCode, Error: fmt.Sprintf("read response: %v", err)}
	}
	logger.Info("crm: response", zap.Int("status", resp.StatusCode), zap.String("body", truncate(string(raw))))

	var decoded orderResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Result{Status: resp.StatusCode, Error: truncate(string(raw))}
	}
	if (resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated) && decoded.Success {
		id := foreignID(decoded.Data)
		logger.Info("crm: order created", zap.String("foreign_order_id", id))
		return Result{Success: true, ForeignOrderID: id, Status: resp.StatusCode}
	}

	msg := decoded.Message
	if msg == "" {
		msg = truncate(string(raw))
	}
	logger.Error("crm: order rejected", zap.Int("status", resp.StatusCode), zap.String("error", msg))
	return Result{Status: resp.StatusCode, Error: msg}
}

func foreignID(data json.RawMessage) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return ""
	}
	if nested, ok := obj["data"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(nested, &inner); err == nil {
			obj = inner
		}
	}
	id, ok := obj["id"]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(id, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(id))
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxErrorBody {
		return s
	}
	return string(r[:maxErrorBody])
}
