// Package whatsapp speaks the Meta WhatsApp Cloud API: it decodes webhook
// deliveries into inbound events and renders outbound messages.
package whatsapp

import "strings"

// ObjectBusinessAccount is the object type of every messaging webhook.
const ObjectBusinessAccount = "whatsapp_business_account"

// Message types carried by a webhook.
const (
	TypeText        = "text"
	TypeInteractive = "interactive"
	TypeButton      = "button_reply"
	TypeList        = "list_reply"
)

// Webhook is the body Meta POSTs to the webhook endpoint.
type Webhook struct {
	Object string  `json:"object" validate:"required"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

type Value struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts,omitempty"`
	Messages         []Message `json:"messages,omitempty"`
	Statuses         []Status  `json:"statuses,omitempty"`
}

type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type Contact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

// Status is a delivery receipt for a message we sent.
type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	RecipientID string `json:"recipient_id"`
}

type Message struct {
	ID          string       `json:"id"`
	From        string       `json:"from"`
	Timestamp   string       `json:"timestamp"`
	Type        string       `json:"type"`
	Text        *Text        `json:"text,omitempty"`
	Interactive *Interactive `json:"interactive,omitempty"`
}

type Text struct {
	Body string `json:"body"`
}

type Interactive struct {
	Type        string `json:"type"`
	ButtonReply *Reply `json:"button_reply,omitempty"`
	ListReply   *Reply `json:"list_reply,omitempty"`
}

// Reply is the choice a customer tapped.
type Reply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Inbound is one customer event: who sent it and the token to dispatch on.
type Inbound struct {
	MessageID string
	From      string
	Text      string
}

// Events returns the customer messages in delivery order. Status receipts and
// message types the bot does not understand are skipped.
func (w Webhook) Events() []Inbound {
	var out []Inbound
	for _, entry := range w.Entry {
		for _, change := range entry.Changes {
			for _, m := range change.Value.Messages {
				if ev, ok := m.Inbound(); ok {
					out = append(out, ev)
				}
			}
		}
	}
	return out
}

// Inbound extracts the dispatch token: the body of a text message or the id
// of a tapped button or list row.
func (m Message) Inbound() (Inbound, bool) {
	if m.From == "" {
		return Inbound{}, false
	}
	ev := Inbound{MessageID: m.ID, From: m.From}
	switch m.Type {
	case TypeText:
		if m.Text == nil {
			return Inbound{}, false
		}
		ev.Text = strings.TrimSpace(m.Text.Body)
	case TypeInteractive:
		if m.Interactive == nil {
			return Inbound{}, false
		}
		switch {
		case m.Interactive.Type == TypeButton && m.Interactive.ButtonReply != nil:
			ev.Text = m.Interactive.ButtonReply.ID
		case m.Interactive.Type == TypeList && m.Interactive.ListReply != nil:
			ev.Text = m.Interactive.ListReply.ID
		default:
			return Inbound{}, false
		}
	default:
		return Inbound{}, false
	}
	return ev, true
}

// Verify answers the subscription handshake. It returns the challenge to echo
// when mode is "subscribe" and token matches the configured verify token.
func Verify(mode, token, challenge, expected string) (string, bool) {
	if mode != "subscribe" || expected == "" || token != expected {
		return "", false
	}
	return challenge, true
}
