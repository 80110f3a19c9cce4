// Package session holds the per-customer conversational state and its
// persistence in Redis.
//
// Loads and saves are a plain read-modify-write against the store with no
// revision check: two concurrent events for the same customer race and the
// later save wins.
package session

import (
	"time"

	"github.com/imrishuroy/go-chat-orderflow/internal/i18n"
)

// State is the dialogue position of a session.
type State string

const (
	StateNew        State = "new"
	StateChooseLang State = "choose_lang"
	StateMain       State = "main"
	StateBrowse     State = "browse"
	StateChooseQty  State = "choose_qty"
	StateAskAddress State = "ask_address"
	StateAskPhone   State = "ask_phone"
	StateAskPayment State = "ask_payment"
	StateAskComment State = "ask_comment"
	StateConfirm    State = "confirm"
)

// States lists every valid state.
var States = []State{
	StateNew, StateChooseLang, StateMain, StateBrowse, StateChooseQty,
	StateAskAddress, StateAskPhone, StateAskPayment, StateAskComment, StateConfirm,
}

// Valid reports whether s is one of the fixed states.
func (s State) Valid() bool {
	for _, known := range States {
		if s == known {
			return true
		}
	}
	return false
}

// CartLine is one distinct variant in the cart. Names are denormalized so a
// cart renders without the catalog.
type CartLine struct {
	VariantID string         `json:"vid" validate:"required"`
	Name      i18n.Localized `json:"name"`
	Variant   i18n.Localized `json:"variant"`
	Price     int64          `json:"price" validate:"gte=0"`
	Qty       int            `json:"qty" validate:"gte=1"`
}

// Sum is the line total.
func (l CartLine) Sum() int64 {
	return l.Price * int64(l.Qty)
}

// OrderInfo holds the checkout answers collected so far.
type OrderInfo struct {
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Payment string `json:"payment,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// Session is the conversational state of one customer.
type Session struct {
	Identity        string     `json:"phone"`
	Lang            i18n.Lang  `json:"lang"`
	State           State      `json:"state"`
	Cart            []CartLine `json:"cart"`
	SelectedItem    string     `json:"sel_item,omitempty"`
	SelectedVariant string     `json:"sel_variant,omitempty"`
	Order           OrderInfo  `json:"order"`
	LastActivity    time.Time  `json:"last_activity"`
}

// New returns a fresh session for identity.
func New(identity string, now time.Time) *Session {
	return &Session{
		Identity:     identity,
		Lang:         i18n.Default,
		State:        StateNew,
		Cart:         []CartLine{},
		LastActivity: now,
	}
}

// Expired reports whether the session has been idle longer than idle.
func (s *Session) Expired(now time.Time, idle time.Duration) bool {
	return now.Sub(s.LastActivity) > idle
}

// ResetOrder drops the checkout answers.
func (s *Session) ResetOrder() {
	s.Order = OrderInfo{}
}

// Normalize enforces that selection pointers only live in browse and choose_qty.
func (s *Session) Normalize() {
	if s.State != StateBrowse && s.State != StateChooseQty {
		s.SelectedItem = ""
		s.SelectedVariant = ""
	}
	if s.Cart == nil {
		s.Cart = []CartLine{}
	}
}
