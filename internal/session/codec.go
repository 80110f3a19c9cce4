package session

import (
	"encoding/json"
	"fmt"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-chat-orderflow/internal/i18n"
)

var validate = validatorv10.New()

// LineResult is the outcome of decoding one stored cart entry.
type LineResult struct {
	Index int
	Line  CartLine
	Err   error
}

type wireSession struct {
	Identity        string            `json:"phone"`
	Lang            string            `json:"lang"`
	State           string            `json:"state"`
	Cart            []json.RawMessage `json:"cart"`
	SelectedItem    string            `json:"sel_item"`
	SelectedVariant string            `json:"sel_variant"`
	Order           OrderInfo         `json:"order"`
	LastActivity    time.Time         `json:"last_activity"`
}

// Encode serializes a session for the store.
func Encode(s *Session) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return data, nil
}

// Decode converts stored session data into the typed model. Cart entries
// that are malformed or fail validation are left out of the session and
// reported with a non-nil Err in the returned results. An unknown state
// resets to new; an unknown language falls back to the default.
func Decode(data []byte) (*Session, []LineResult, error) {
	var w wireSession
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, nil, fmt.Errorf("unmarshal session: %w", err)
	}

	s := &Session{
		Identity:        w.Identity,
		Lang:            i18n.Default,
		State:           State(w.State),
		Cart:            make([]CartLine, 0, len(w.Cart)),
		SelectedItem:    w.SelectedItem,
		SelectedVariant: w.SelectedVariant,
		Order:           w.Order,
		LastActivity:    w.LastActivity,
	}
	if lang, ok := i18n.ParseLang(w.Lang); ok {
		s.Lang = lang
	}
	if !s.State.Valid() {
		s.State = StateNew
	}

	results := make([]LineResult, 0, len(w.Cart))
	seen := map[string]int{}
	for i, raw := range w.Cart {
		res := LineResult{Index: i}
		if err := json.Unmarshal(raw, &res.Line); err != nil {
			res.Err = fmt.Errorf("cart[%d]: %w", i, err)
		} else if err := validate.Struct(res.Line); err != nil {
			res.Err = fmt.Errorf("cart[%d]: %w", i, err)
		} else if pos, dup := seen[res.Line.VariantID]; dup {
			s.Cart[pos].Qty += res.Line.Qty
		} else {
			seen[res.Line.VariantID] = len(s.Cart)
			s.Cart = append(s.Cart, res.Line)
		}
		results = append(results, res)
	}
	s.Normalize()
	return s, results, nil
}
