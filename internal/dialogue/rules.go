package dialogue

import (
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/imrishuroy/go-chat-orderflow/internal/cart"
	"github.com/imrishuroy/go-chat-orderflow/internal/i18n"
	"github.com/imrishuroy/go-chat-orderflow/internal/observability"
	"github.com/imrishuroy/go-chat-orderflow/internal/present"
	"github.com/imrishuroy/go-chat-orderflow/internal/session"
)

// MinAddressLen is the shortest address text accepted, in characters.
const MinAddressLen = 5

// rule is one row of the transition table. A nil states or kinds matches
// any. apply returns false to pass the event on to the next rule.
type rule struct {
	name   string
	states []session.State
	kinds  []Kind
	apply  func(e *Engine, t *turn) bool
}

func (r rule) matches(state session.State, kind Kind) bool {
	if r.states != nil && !containsState(r.states, state) {
		return false
	}
	if r.kinds != nil && !containsKind(r.kinds, kind) {
		return false
	}
	return true
}

func containsState(states []session.State, s session.State) bool {
	for _, st := range states {
		if st == s {
			return true
		}
	}
	return false
}

func containsKind(kinds []Kind, k Kind) bool {
	for _, kk := range kinds {
		if kk == k {
			return true
		}
	}
	return false
}

// rules is evaluated top to bottom; the first rule that applies wins. An
// event no rule takes re-renders the main menu.
var rules = []rule{
	{name: "cancel", kinds: []Kind{KindCancel}, apply: (*Engine).cancel},
	{name: "lang_switch", kinds: []Kind{KindLangSwitch}, apply: (*Engine).langSwitch},
	{name: "language", states: []session.State{session.StateNew, session.StateChooseLang}, apply: (*Engine).language},
	{name: "greeting", kinds: []Kind{KindGreeting}, apply: (*Engine).greeting},
	{name: "back", kinds: []Kind{KindBackMain, KindBackCategories}, apply: (*Engine).back},
	{name: "category", kinds: []Kind{KindCategory}, apply: (*Engine).category},
	{name: "item", kinds: []Kind{KindItem}, apply: (*Engine).item},
	{name: "variant", kinds: []Kind{KindVariant}, apply: (*Engine).variant},
	{name: "faq", kinds: []Kind{KindFAQ}, apply: (*Engine).faq},
	{name: "quantity", states: []session.State{session.StateChooseQty}, kinds: []Kind{KindQty, KindNumber}, apply: (*Engine).quantity},
	{name: "cart", kinds: []Kind{KindCart}, apply: (*Engine).showCart},
	{name: "clear_cart", kinds: []Kind{KindClearCart}, apply: (*Engine).clearCart},
	{name: "checkout", kinds: []Kind{KindCheckout}, apply: (*Engine).checkout},
	{name: "address", states: []session.State{session.StateAskAddress}, apply: (*Engine).address},
	{name: "phone", states: []session.State{session.StateAskPhone}, apply: (*Engine).phone},
	{name: "payment", states: []session.State{session.StateAskPayment}, apply: (*Engine).payment},
	{name: "comment", states: []session.State{session.StateAskComment}, apply: (*Engine).comment},
	{name: "confirm", states: []session.State{session.StateConfirm}, kinds: []Kind{KindConfirmYes, KindConfirmNo}, apply: (*Engine).confirm},
	{name: "menu", kinds: []Kind{KindMenu}, apply: (*Engine).showMenu},
	{name: "faq_menu", kinds: []Kind{KindFAQMenu}, apply: (*Engine).showFAQ},
	{name: "contacts", kinds: []Kind{KindContacts}, apply: (*Engine).showContacts},
}

func (e *Engine) cancel(t *turn) bool {
	t.s = session.New(t.s.Identity, t.s.LastActivity)
	t.s.State = session.StateMain
	t.say(present.Text(e.t(t.s.Lang, "cancelled")))
	return true
}

func (e *Engine) langSwitch(t *turn) bool {
	t.s.State = session.StateChooseLang
	t.say(e.langSelector(e.t(t.s.Lang, "lang_prompt")))
	return true
}

func (e *Engine) language(t *turn) bool {
	if t.d.Kind == KindLang {
		t.s.Lang = t.d.Lang
		t.s.State = session.StateMain
		t.say(e.mainMenu(t.s.Lang))
		return true
	}
	return e.greeting(t)
}

func (e *Engine) greeting(t *turn) bool {
	t.s.State = session.StateChooseLang
	t.say(e.langSelector(e.t(t.s.Lang, "welcome")))
	return true
}

func (e *Engine) back(t *turn) bool {
	t.s.State = session.StateMain
	if t.d.Kind == KindBackMain {
		t.say(e.mainMenu(t.s.Lang))
	} else {
		t.say(e.categories(t.s.Lang))
	}
	return true
}

func (e *Engine) category(t *turn) bool {
	lang := t.s.Lang
	cat, ok := e.menu.Category(t.d.ID)
	switch {
	case !ok:
		t.s.State = session.StateMain
		t.say(e.categories(lang))
	case cat.ContactOnly:
		t.s.State = session.StateMain
		t.say(present.Buttons(e.t(lang, "steaks_contact"),
			present.Button{ID: "back_categories", Title: e.t(lang, "btn_back_menu")}))
	default:
		t.s.State = session.StateBrowse
		t.s.SelectedItem, t.s.SelectedVariant = "", ""
		t.say(e.items(lang, cat))
	}
	return true
}

func (e *Engine) item(t *turn) bool {
	lang := t.s.Lang
	it, ok := e.menu.Item(t.d.ID)
	if !ok {
		t.s.State = session.StateMain
		t.say(e.categories(lang))
		return true
	}
	t.s.SelectedItem = it.ID
	if len(it.Variants) == 1 {
		v := it.Variants[0]
		t.s.SelectedVariant = v.ID
		t.s.State = session.StateChooseQty
		t.say(e.itemQty(lang, it, v))
		return true
	}
	t.s.SelectedVariant = ""
	t.s.State = session.StateBrowse
	t.say(e.variants(lang, it))
	return true
}

func (e *Engine) variant(t *turn) bool {
	lang := t.s.Lang
	v, it, ok := e.menu.Variant(t.d.ID)
	if !ok {
		t.s.State = session.StateMain
		t.say(e.categories(lang))
		return true
	}
	t.s.SelectedItem, t.s.SelectedVariant = it.ID, v.ID
	t.s.State = session.StateChooseQty
	t.say(e.variantQty(lang, it, v))
	return true
}

// faq answers known keys and stays silent on anything else.
func (e *Engine) faq(t *turn) bool {
	t.s.State = session.StateMain
	if msg, ok := e.faqAnswer(t.s.Lang, t.d.ID); ok {
		t.say(msg)
	}
	return true
}

func (e *Engine) quantity(t *turn) bool {
	v, it, ok := e.menu.Variant(t.s.SelectedVariant)
	if !ok {
		return false
	}
	qty := cart.ClampQty(t.d.Qty)
	cart.Add(t.s, e.menu, v.ID, qty)
	t.s.State = session.StateMain
	name := it.Name.In(t.s.Lang)
	if len(it.Variants) > 1 {
		name += " (" + v.Label.In(t.s.Lang) + ")"
	}
	t.say(e.added(t.s, name, qty))
	return true
}

func (e *Engine) showCart(t *turn) bool {
	t.s.State = session.StateMain
	t.say(e.cartView(t.s))
	return true
}

func (e *Engine) clearCart(t *turn) bool {
	cart.Clear(t.s)
	t.s.State = session.StateMain
	t.say(present.Text(e.t(t.s.Lang, "cart_cleared")))
	return true
}

func (e *Engine) checkout(t *turn) bool {
	lang := t.s.Lang
	if cart.IsEmpty(t.s) || cart.Total(t.s) < e.minOrder {
		t.s.State = session.StateMain
		t.say(present.Text(e.minWarning(lang)))
		return true
	}
	t.s.ResetOrder()
	t.s.State = session.StateAskAddress
	t.say(present.Text(e.t(lang, "cart_title") + "\n\n" + cart.Render(t.s, e.loc) + "\n\n" + e.t(lang, "ask_address")))
	return true
}

func (e *Engine) address(t *turn) bool {
	if utf8.RuneCountInString(t.d.Text) < MinAddressLen {
		t.say(present.Text(e.t(t.s.Lang, "ask_address")))
		return true
	}
	t.s.Order.Address = t.d.Text
	t.s.State = session.StateAskPhone
	t.say(present.Text(e.t(t.s.Lang, "ask_phone")))
	return true
}

func (e *Engine) phone(t *turn) bool {
	t.s.Order.Phone = t.d.Text
	t.s.State = session.StateAskPayment
	t.say(e.paymentChoices(t.s.Lang))
	return true
}

var paymentKeys = map[string]string{
	"kaspi": "pay_kaspi",
	"cash":  "pay_cash",
	"qr":    "pay_qr",
}

func (e *Engine) payment(t *turn) bool {
	t.s.Order.Payment = t.d.Text
	if key, ok := paymentKeys[t.d.ID]; ok && t.d.Kind == KindPayment {
		t.s.Order.Payment = e.t(t.s.Lang, key)
	}
	t.s.State = session.StateAskComment
	t.say(e.commentChoices(t.s.Lang))
	return true
}

// NoComment is stored when the customer skips the comment.
const NoComment = "—"

func (e *Engine) comment(t *turn) bool {
	lang := t.s.Lang
	t.s.Order.Comment = t.d.Text
	if t.d.Kind == KindComment {
		switch t.d.ID {
		case "none":
			t.s.Order.Comment = NoComment
		case "noonion":
			t.s.Order.Comment = e.t(lang, "no_onion")
		case "sauce":
			t.s.Order.Comment = e.t(lang, "more_sauce")
		}
	}
	t.s.State = session.StateConfirm
	t.say(e.confirmation(t.s))
	return true
}

func (e *Engine) confirm(t *turn) bool {
	lang := t.s.Lang
	if t.d.Kind == KindConfirmNo {
		cart.Clear(t.s)
		t.s.ResetOrder()
		t.s.State = session.StateMain
		t.say(present.Text(e.t(lang, "order_cancel")))
		return true
	}
	if cart.IsEmpty(t.s) {
		return false
	}

	receipt := e.placer.Place(t.ctx, t.s)
	t.receipt = receipt
	number := ""
	if receipt != nil && receipt.Order != nil {
		number = receipt.Order.Number
	}
	if receipt == nil || !receipt.Submission.Success {
		fields := []zap.Field{zap.String("customer", t.s.Identity), zap.String("order_number", number)}
		if receipt != nil {
			fields = append(fields, zap.String("crm_error", receipt.Submission.Error))
		}
		observability.FromContext(t.ctx).Warn("order confirmed without crm submission", fields...)
	}

	cart.Clear(t.s)
	t.s.ResetOrder()
	t.s.State = session.StateMain
	t.say(present.Text(e.t(lang, "order_done", i18n.Params{
		"id":   number,
		"time": e.deliveryTime,
	})))
	return true
}

func (e *Engine) showMenu(t *turn) bool {
	t.s.State = session.StateMain
	t.say(e.categories(t.s.Lang))
	return true
}

func (e *Engine) showFAQ(t *turn) bool {
	t.s.State = session.StateMain
	t.say(e.faqList(t.s.Lang))
	return true
}

func (e *Engine) showContacts(t *turn) bool {
	t.s.State = session.StateMain
	t.say(present.Text(e.t(t.s.Lang, "contacts")))
	return true
}
