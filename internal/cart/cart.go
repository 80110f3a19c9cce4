// Package cart mutates and values the cart held on a session.
package cart

import (
	"strings"

	"github.com/imrishuroy/go-chat-orderflow/internal/catalog"
	"github.com/imrishuroy/go-chat-orderflow/internal/i18n"
	"github.com/imrishuroy/go-chat-orderflow/internal/session"
)

const (
	MinQty = 1
	MaxQty = 20
)

// ClampQty bounds a requested quantity to [MinQty, MaxQty].
func ClampQty(qty int) int {
	if qty < MinQty {
		return MinQty
	}
	if qty > MaxQty {
		return MaxQty
	}
	return qty
}

// Add puts qty of variantID into the cart. An existing line for the variant
// grows; otherwise a line is appended. Unknown variants are ignored.
func Add(s *session.Session, menu *catalog.Catalog, variantID string, qty int) bool {
	v, item, ok := menu.Variant(variantID)
	if !ok || qty < 1 {
		return false
	}
	for i := range s.Cart {
		if s.Cart[i].VariantID == variantID {
			s.Cart[i].Qty += qty
			return true
		}
	}
	s.Cart = append(s.Cart, session.CartLine{
		VariantID: v.ID,
		Name:      item.Name,
		Variant:   v.Label,
		Price:     v.Price,
		Qty:       qty,
	})
	return true
}

// Total is the exact sum of price*qty over all lines.
func Total(s *session.Session) int64 {
	var total int64
	for _, line := range s.Cart {
		total += line.Sum()
	}
	return total
}

// Clear empties the cart.
func Clear(s *session.Session) {
	s.Cart = []session.CartLine{}
}

// IsEmpty reports whether the cart has no lines.
func IsEmpty(s *session.Session) bool {
	return len(s.Cart) == 0
}

// Render lists the cart lines and the grand total in the session language.
// An empty cart renders the cart_empty message.
func Render(s *session.Session, loc *i18n.Localizer) string {
	if IsEmpty(s) {
		return loc.Text(s.Lang, "cart_empty")
	}
	lines := make([]string, 0, len(s.Cart)+1)
	for i, line := range s.Cart {
		lines = append(lines, loc.Text(s.Lang, "cart_line", i18n.Params{
			"n":       i + 1,
			"name":    line.Name.In(s.Lang),
			"variant": line.Variant.In(s.Lang),
			"qty":     line.Qty,
			"sum":     loc.Amount(line.Sum()),
		}))
	}
	lines = append(lines, "\n"+loc.Text(s.Lang, "total")+": *"+loc.Amount(Total(s))+" тг*")
	return strings.Join(lines, "\n")
}
