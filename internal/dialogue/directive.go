// Package dialogue is the conversational state machine: it parses an inbound
// token into a Directive, runs it through an ordered rule table against the
// customer's session and returns the messages to send back.
package dialogue

import (
	"strconv"
	"strings"

	"github.com/imrishuroy/go-chat-orderflow/internal/cart"
	"github.com/imrishuroy/go-chat-orderflow/internal/i18n"
)

// Kind classifies an inbound token.
type Kind int

const (
	KindText Kind = iota
	KindCancel
	KindLangSwitch
	KindGreeting
	KindLang
	KindBackMain
	KindBackCategories
	KindCategory
	KindItem
	KindVariant
	KindFAQ
	KindQty
	KindNumber
	KindCart
	KindClearCart
	KindCheckout
	KindPayment
	KindComment
	KindConfirmYes
	KindConfirmNo
	KindMenu
	KindFAQMenu
	KindContacts
)

var kindNames = [...]string{
	KindText:           "text",
	KindCancel:         "cancel",
	KindLangSwitch:     "lang_switch",
	KindGreeting:       "greeting",
	KindLang:           "lang",
	KindBackMain:       "back_main",
	KindBackCategories: "back_categories",
	KindCategory:       "category",
	KindItem:           "item",
	KindVariant:        "variant",
	KindFAQ:            "faq",
	KindQty:            "qty",
	KindNumber:         "number",
	KindCart:           "cart",
	KindClearCart:      "clear_cart",
	KindCheckout:       "checkout",
	KindPayment:        "payment",
	KindComment:        "comment",
	KindConfirmYes:     "confirm_yes",
	KindConfirmNo:      "confirm_no",
	KindMenu:           "menu",
	KindFAQMenu:        "faq_menu",
	KindContacts:       "contacts",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Directive is a parsed inbound token. Only the payload field matching Kind
// is set: ID for catalog, FAQ, payment and comment ids, Lang for a language
// reply, Qty for quantities. Text always holds the trimmed raw token.
type Directive struct {
	Kind Kind
	ID   string
	Lang i18n.Lang
	Qty  int
	Text string
}

// Selector button ids and titles for the language reply.
const (
	LangRUID    = "lang_ru"
	LangKZID    = "lang_kz"
	LangRUTitle = "🇷🇺 Русский"
	LangKZTitle = "🇰🇿 Қазақша"
)

var (
	cancelWords   = words("стоп", "отмена", "stop", "бас тарту")
	langWords     = words("язык", "тіл", "lang")
	greetingWords = words("start", "/start", "привет", "салам", "сәлем", "hello")
	cartWords     = words("корзина", "себет", "cart")
	menuWords     = words("меню", "мәзір", "menu")
)

func words(ws ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(ws))
	for _, w := range ws {
		out[w] = struct{}{}
	}
	return out
}

func has(set map[string]struct{}, w string) bool {
	_, ok := set[w]
	return ok
}

// prefixed maps directive id prefixes to their kinds.
var prefixed = []struct {
	prefix string
	kind   Kind
}{
	{"cat_", KindCategory},
	{"item_", KindItem},
	{"var_", KindVariant},
	{"faq_", KindFAQ},
	{"pay_", KindPayment},
	{"cm_", KindComment},
}

// Parse classifies raw. Keywords match the lower-cased trimmed text,
// directive ids the trimmed text as is. Anything else is KindText.
func Parse(raw string) Directive {
	text := strings.TrimSpace(raw)
	lower := strings.ToLower(text)
	d := Directive{Kind: KindText, Text: text}

	switch {
	case has(cancelWords, lower):
		d.Kind = KindCancel
	case has(langWords, lower):
		d.Kind = KindLangSwitch
	case has(greetingWords, lower):
		d.Kind = KindGreeting
	case text == LangRUID || text == LangRUTitle:
		d.Kind, d.Lang = KindLang, i18n.RU
	case text == LangKZID || text == LangKZTitle:
		d.Kind, d.Lang = KindLang, i18n.KZ
	case text == "back_main":
		d.Kind = KindBackMain
	case text == "back_categories":
		d.Kind = KindBackCategories
	case strings.HasPrefix(text, "qty_"):
		if n, err := strconv.Atoi(strings.TrimPrefix(text, "qty_")); err == nil {
			d.Kind, d.Qty = KindQty, n
		}
	case isDigits(text):
		d.Kind = KindNumber
		n, err := strconv.Atoi(text)
		if err != nil {
			n = cart.MaxQty
		}
		d.Qty = n
	case has(cartWords, lower) || text == "btn_cart":
		d.Kind = KindCart
	case text == "clear_cart":
		d.Kind = KindClearCart
	case text == "checkout":
		d.Kind = KindCheckout
	case text == "confirm_yes":
		d.Kind = KindConfirmYes
	case text == "confirm_no":
		d.Kind = KindConfirmNo
	case has(menuWords, lower) || text == "btn_menu":
		d.Kind = KindMenu
	case text == "btn_faq":
		d.Kind = KindFAQMenu
	case text == "btn_contacts":
		d.Kind = KindContacts
	default:
		for _, p := range prefixed {
			if strings.HasPrefix(text, p.prefix) {
				d.Kind, d.ID = p.kind, strings.TrimPrefix(text, p.prefix)
				break
			}
		}
	}
	return d
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
