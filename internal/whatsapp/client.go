package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/imrishuroy/go-chat-orderflow/internal/observability"
	"github.com/imrishuroy/go-chat-orderflow/internal/present"
)

// Cloud API limits on interactive message text, in characters.
const (
	MaxButtonTitle     = 20
	MaxListButtonLabel = 20
	MaxRowTitle        = 24
	MaxSectionTitle    = 24
	MaxRowDescription  = 72
)

// Client sends messages from one business phone number.
type Client struct {
	apiBase    string
	phoneID    string
	token      string
	httpClient *http.Client
}

func NewClient(apiBase, phoneID, token string, timeout time.Duration) *Client {
	return &Client{
		apiBase:    strings.TrimRight(apiBase, "/"),
		phoneID:    phoneID,
		token:      token,
		httpClient: observability.NewHTTPClient(timeout),
	}
}

// Configured reports whether the access token and phone number id are set.
func (c *Client) Configured() bool {
	return c != nil && c.token != "" && c.phoneID != ""
}

type outbound struct {
	MessagingProduct string            `json:"messaging_product"`
	To               string            `json:"to"`
	Type             string            `json:"type"`
	Text             *Text             `json:"text,omitempty"`
	Interactive      *interactiveBlock `json:"interactive,omitempty"`
}

type interactiveBlock struct {
	Type   string `json:"type"`
	Body   Text   `json:"body"`
	Action action `json:"action"`
}

type action struct {
	Buttons  []replyButton `json:"buttons,omitempty"`
	Button   string        `json:"button,omitempty"`
	Sections []section     `json:"sections,omitempty"`
}

type replyButton struct {
	Type  string `json:"type"`
	Reply Reply  `json:"reply"`
}

type section struct {
	Title string `json:"title,omitempty"`
	Rows  []row  `json:"rows"`
}

type row struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Render builds the Cloud API request body for msg, truncating labels to the
// API limits.
func Render(to string, msg present.Message) ([]byte, error) {
	out := outbound{MessagingProduct: "whatsapp", To: to}
	switch msg.Kind {
	case present.KindText:
		out.Type = TypeText
		out.Text = &Text{Body: msg.Body}
	case present.KindButtons:
		buttons := make([]replyButton, 0, len(msg.Buttons))
		for _, b := range msg.Buttons {
			buttons = append(buttons, replyButton{
				Type:  "reply",
				Reply: Reply{ID: b.ID, Title: truncate(b.Title, MaxButtonTitle)},
			})
		}
		out.Type = TypeInteractive
		out.Interactive = &interactiveBlock{
			Type:   "button",
			Body:   Text{Body: msg.Body},
			Action: action{Buttons: buttons},
		}
	case present.KindList:
		sections := make([]section, 0, len(msg.Sections))
		for _, sec := range msg.Sections {
			rows := make([]row, 0, len(sec.Rows))
			for _, r := range sec.Rows {
				rows = append(rows, row{
					ID:          r.ID,
					Title:       truncate(r.Title, MaxRowTitle),
					Description: truncate(r.Description, MaxRowDescription),
				})
			}
			sections = append(sections, section{Title: truncate(sec.Title, MaxSectionTitle), Rows: rows})
		}
		out.Type = TypeInteractive
		out.Interactive = &interactiveBlock{
			Type:   "list",
			Body:   Text{Body: msg.Body},
			Action: action{Button: truncate(msg.ButtonLabel, MaxListButtonLabel), Sections: sections},
		}
	default:
		return nil, fmt.Errorf("unknown message kind %s", msg.Kind)
	}
	return json.Marshal(out)
}

// Send posts msg to the customer. The caller decides what a failure means;
// the dialogue has already moved on.
func (c *Client) Send(ctx context.Context, to string, msg present.Message) error {
	logger := observability.FromContext(ctx)
	if !c.Configured() {
		logger.Warn("whatsapp: credentials not set, message dropped", zap.String("to", to))
		return nil
	}

	body, err := Render(to, msg)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/%s/messages", c.apiBase, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build whatsapp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp send: %w", err)
	}
	defer resp.Body.Close()
	logger.Debug("whatsapp send",
		zap.String("to", to),
		zap.Stringer("kind", msg.Kind),
		zap.Int("status", resp.StatusCode))
	if resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp send: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
