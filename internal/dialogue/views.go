package dialogue

import (
	"strconv"

	"github.com/imrishuroy/go-chat-orderflow/internal/cart"
	"github.com/imrishuroy/go-chat-orderflow/internal/catalog"
	"github.com/imrishuroy/go-chat-orderflow/internal/i18n"
	"github.com/imrishuroy/go-chat-orderflow/internal/present"
	"github.com/imrishuroy/go-chat-orderflow/internal/session"
)

// FAQKeys are the answers the FAQ list offers, in display order.
var FAQKeys = []string{"hours", "delivery", "payment"}

func (e *Engine) t(lang i18n.Lang, key string, params ...i18n.Params) string {
	return e.loc.Text(lang, key, params...)
}

func (e *Engine) price(lang i18n.Lang, amount int64) string {
	return e.t(lang, "price", i18n.Params{"price": e.loc.Amount(amount)})
}

func (e *Engine) langSelector(body string) present.Message {
	return present.Buttons(body,
		present.Button{ID: LangRUID, Title: LangRUTitle},
		present.Button{ID: LangKZID, Title: LangKZTitle},
	)
}

func (e *Engine) mainMenu(lang i18n.Lang) present.Message {
	return present.Buttons(e.t(lang, "main_menu"),
		present.Button{ID: "btn_menu", Title: e.t(lang, "btn_menu")},
		present.Button{ID: "btn_faq", Title: e.t(lang, "btn_faq")},
		present.Button{ID: "btn_contacts", Title: e.t(lang, "btn_contacts")},
	)
}

func (e *Engine) categories(lang i18n.Lang) present.Message {
	cats := e.menu.Categories()
	rows := make([]present.Row, 0, len(cats)+1)
	for _, cat := range cats {
		desc := e.t(lang, "category_contact")
		if !cat.ContactOnly {
			desc = e.t(lang, "category_count", i18n.Params{"count": len(e.menu.Items(cat.ID))})
		}
		rows = append(rows, present.Row{ID: "cat_" + cat.ID, Title: cat.Name.In(lang), Description: desc})
	}
	rows = append(rows, present.Row{ID: "back_main", Title: e.t(lang, "btn_back")})
	return present.List(e.t(lang, "choose_category"), e.t(lang, "list_open_menu"),
		present.Section{Title: e.t(lang, "menu_section"), Rows: rows})
}

func (e *Engine) items(lang i18n.Lang, cat catalog.Category) present.Message {
	items := e.menu.Items(cat.ID)
	rows := make([]present.Row, 0, len(items)+1)
	for _, it := range items {
		lo, hi := it.PriceRange()
		desc := e.price(lang, lo)
		if lo != hi {
			desc = e.t(lang, "price_from", i18n.Params{"price": e.loc.Amount(lo)})
		}
		rows = append(rows, present.Row{ID: "item_" + it.ID, Title: it.Name.In(lang), Description: desc})
	}
	rows = append(rows, present.Row{ID: "back_categories", Title: e.t(lang, "btn_back_menu")})
	name := cat.Name.In(lang)
	return present.List("*"+name+"*", e.t(lang, "list_choose"),
		present.Section{Title: name, Rows: rows})
}

func (e *Engine) variants(lang i18n.Lang, it catalog.Item) present.Message {
	rows := make([]present.Row, 0, len(it.Variants)+1)
	for _, v := range it.Variants {
		rows = append(rows, present.Row{ID: "var_" + v.ID, Title: v.Label.In(lang), Description: e.price(lang, v.Price)})
	}
	rows = append(rows, present.Row{ID: "cat_" + it.CategoryID, Title: e.t(lang, "btn_back")})

	name := it.Name.In(lang)
	body := "*" + name + "*"
	if desc := it.Description.In(lang); desc != "" {
		body += "\n" + desc
	}
	if note := it.Note.In(lang); note != "" {
		body += "\n📎 " + note
	}
	return present.List(body, e.t(lang, "list_choose"), present.Section{Title: name, Rows: rows})
}

// itemQty is the quantity prompt for an item with a single variant.
func (e *Engine) itemQty(lang i18n.Lang, it catalog.Item, v catalog.Variant) present.Message {
	body := "*" + it.Name.In(lang) + "*"
	if desc := it.Description.In(lang); desc != "" {
		body += "\n" + desc
	}
	body += "\n💰 *" + e.loc.Amount(v.Price) + " тг*"
	if note := it.Note.In(lang); note != "" {
		body += "\n📎 " + note
	}
	return e.qtyButtons(lang, body+"\n\n"+e.t(lang, "choose_qty"))
}

// variantQty is the quantity prompt after picking one of several variants.
func (e *Engine) variantQty(lang i18n.Lang, it catalog.Item, v catalog.Variant) present.Message {
	body := "*" + it.Name.In(lang) + " (" + v.Label.In(lang) + ")*\n💰 " + e.loc.Amount(v.Price) + " тг"
	return e.qtyButtons(lang, body+"\n\n"+e.t(lang, "choose_qty"))
}

func (e *Engine) qtyButtons(lang i18n.Lang, body string) present.Message {
	buttons := make([]present.Button, 0, present.MaxButtons)
	for n := 1; n <= present.MaxButtons; n++ {
		buttons = append(buttons, present.Button{
			ID:    "qty_" + strconv.Itoa(n),
			Title: e.t(lang, "btn_qty", i18n.Params{"qty": n}),
		})
	}
	return present.Buttons(body, buttons...)
}

func (e *Engine) added(s *session.Session, name string, qty int) present.Message {
	total := cart.Total(s)
	body := e.t(s.Lang, "added", i18n.Params{"name": name, "qty": qty, "total": e.loc.Amount(total)}) +
		"\n\n" + e.t(s.Lang, "add_more_hint")
	buttons := []present.Button{
		{ID: "btn_menu", Title: e.t(s.Lang, "btn_more")},
		{ID: "btn_cart", Title: e.t(s.Lang, "btn_cart")},
	}
	if total >= e.minOrder {
		buttons = append(buttons, present.Button{ID: "checkout", Title: e.t(s.Lang, "btn_checkout")})
	}
	return present.Buttons(body, buttons...)
}

func (e *Engine) cartView(s *session.Session) present.Message {
	if cart.IsEmpty(s) {
		return present.Text(e.t(s.Lang, "cart_empty"))
	}
	body := e.t(s.Lang, "cart_title") + "\n\n" + cart.Render(s, e.loc)
	if cart.Total(s) < e.minOrder {
		return present.Buttons(body+"\n\n"+e.minWarning(s.Lang),
			present.Button{ID: "btn_menu", Title: e.t(s.Lang, "btn_add_more")},
			present.Button{ID: "clear_cart", Title: e.t(s.Lang, "btn_clear")},
		)
	}
	return present.Buttons(body,
		present.Button{ID: "checkout", Title: e.t(s.Lang, "btn_checkout")},
		present.Button{ID: "btn_menu", Title: e.t(s.Lang, "btn_add_more")},
		present.Button{ID: "clear_cart", Title: e.t(s.Lang, "btn_clear")},
	)
}

func (e *Engine) minWarning(lang i18n.Lang) string {
	return e.t(lang, "min_warn", i18n.Params{"min": e.loc.Amount(e.minOrder)})
}

func (e *Engine) faqList(lang i18n.Lang) present.Message {
	rows := make([]present.Row, 0, len(FAQKeys))
	for _, key := range FAQKeys {
		rows = append(rows, present.Row{ID: "faq_" + key, Title: e.t(lang, "faq_row_"+key)})
	}
	return present.List(e.t(lang, "faq_title"), e.t(lang, "list_choose"),
		present.Section{Title: "FAQ", Rows: rows})
}

func (e *Engine) faqAnswer(lang i18n.Lang, key string) (present.Message, bool) {
	for _, known := range FAQKeys {
		if key == known {
			return present.Text(e.t(lang, "faq_"+key, i18n.Params{
				"time": e.deliveryTime,
				"min":  e.loc.Amount(e.minOrder),
			})), true
		}
	}
	return present.Message{}, false
}

func (e *Engine) paymentChoices(lang i18n.Lang) present.Message {
	return present.Buttons(e.t(lang, "ask_payment"),
		present.Button{ID: "pay_kaspi", Title: "💳 " + e.t(lang, "pay_kaspi")},
		present.Button{ID: "pay_cash", Title: "💵 " + e.t(lang, "pay_cash")},
		present.Button{ID: "pay_qr", Title: "📱 " + e.t(lang, "pay_qr")},
	)
}

func (e *Engine) commentChoices(lang i18n.Lang) present.Message {
	return present.Buttons(e.t(lang, "ask_comment"),
		present.Button{ID: "cm_none", Title: e.t(lang, "no_comment")},
		present.Button{ID: "cm_noonion", Title: e.t(lang, "no_onion")},
		present.Button{ID: "cm_sauce", Title: e.t(lang, "more_sauce")},
	)
}

func (e *Engine) confirmation(s *session.Session) present.Message {
	body := e.t(s.Lang, "confirm", i18n.Params{
		"cart":    cart.Render(s, e.loc),
		"addr":    s.Order.Address,
		"phone":   s.Order.Phone,
		"pay":     s.Order.Payment,
		"comment": s.Order.Comment,
		"time":    e.deliveryTime,
	})
	return present.Buttons(body,
		present.Button{ID: "confirm_yes", Title: e.t(s.Lang, "btn_confirm")},
		present.Button{ID: "confirm_no", Title: e.t(s.Lang, "btn_cancel")},
	)
}
