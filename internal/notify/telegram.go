package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/imrishuroy/go-chat-orderflow/internal/observability"
	"github.com/imrishuroy/go-chat-orderflow/internal/orders"
)

// Telegram posts messages to one chat through the Bot API.
type Telegram struct {
	apiBase    string
	token      string
	chatID     string
	httpClient *http.Client
}

func NewTelegram(apiBase, token, chatID string, timeout time.Duration) *Telegram {
	return &Telegram{
		apiBase:    strings.TrimRight(apiBase, "/"),
		token:      token,
		chatID:     chatID,
		httpClient: observability.NewHTTPClient(timeout),
	}
}

// Configured reports whether both the bot token and the chat id are set.
func (t *Telegram) Configured() bool {
	return t != nil && t.token != "" && t.chatID != ""
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Send posts text with Markdown formatting. An unconfigured bot sends nothing.
func (t *Telegram) Send(ctx context.Context, text string) error {
	if !t.Configured() {
		return nil
	}
	body, err := json.Marshal(sendMessageRequest{ChatID: t.chatID, Text: text, ParseMode: "Markdown"})
	if err != nil {
		return fmt.Errorf("marshal telegram message: %w", err)
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram send: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}

// Notify sends the order summary.
func (t *Telegram) Notify(ctx context.Context, order *orders.Order) error {
	return t.Send(ctx, Summary(order))
}
