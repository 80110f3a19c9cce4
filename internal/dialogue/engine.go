package dialogue

import (
	"context"

	"go.uber.org/zap"

	"github.com/imrishuroy/go-chat-orderflow/internal/catalog"
	"github.com/imrishuroy/go-chat-orderflow/internal/checkout"
	"github.com/imrishuroy/go-chat-orderflow/internal/i18n"
	"github.com/imrishuroy/go-chat-orderflow/internal/observability"
	"github.com/imrishuroy/go-chat-orderflow/internal/present"
	"github.com/imrishuroy/go-chat-orderflow/internal/session"
)

// Placer turns a confirmed session into an order.
type Placer interface {
	Place(ctx context.Context, s *session.Session) *checkout.Receipt
}

// Settings are the storefront rules the dialogue shows and enforces.
type Settings struct {
	MinOrder     int64
	DeliveryTime string
}

// Outcome is the result of one inbound event. Receipt is set only when the
// event confirmed an order.
type Outcome struct {
	Session  *session.Session
	Rule     string
	Messages []present.Message
	Receipt  *checkout.Receipt
}

// Engine runs inbound events through the rule table.
type Engine struct {
	sessions     *session.Manager
	menu         *catalog.Catalog
	loc          *i18n.Localizer
	placer       Placer
	minOrder     int64
	deliveryTime string
}

func NewEngine(sessions *session.Manager, menu *catalog.Catalog, loc *i18n.Localizer, placer Placer, settings Settings) *Engine {
	return &Engine{
		sessions:     sessions,
		menu:         menu,
		loc:          loc,
		placer:       placer,
		minOrder:     settings.MinOrder,
		deliveryTime: settings.DeliveryTime,
	}
}

// Handle loads the customer's session, applies text to it and persists the
// result. It always returns at least the default reply unless the event
// names an unknown FAQ entry.
func (e *Engine) Handle(ctx context.Context, identity, text string) Outcome {
	s := e.sessions.Acquire(ctx, identity)
	out := e.Step(ctx, s, Parse(text))
	e.sessions.Persist(ctx, s)
	return out
}

// Step applies d to s in place without loading or saving.
func (e *Engine) Step(ctx context.Context, s *session.Session, d Directive) Outcome {
	t := &turn{ctx: ctx, s: s, d: d}
	name := "default"
	for _, r := range rules {
		if r.matches(s.State, d.Kind) && r.apply(e, t) {
			name = r.name
			break
		}
	}
	if name == "default" {
		e.fallback(t)
	}

	observability.FromContext(ctx).Debug("dialogue step",
		zap.String("customer", s.Identity),
		zap.Stringer("kind", d.Kind),
		zap.String("rule", name),
		zap.String("state", string(s.State)))

	if t.s != s {
		*s = *t.s
	}
	return Outcome{Session: s, Rule: name, Messages: t.out, Receipt: t.receipt}
}

func (e *Engine) fallback(t *turn) {
	t.s.State = session.StateMain
	t.say(e.mainMenu(t.s.Lang))
}

type turn struct {
	ctx     context.Context
	s       *session.Session
	d       Directive
	out     []present.Message
	receipt *checkout.Receipt
}

func (t *turn) say(msgs ...present.Message) {
	t.out = append(t.out, msgs...)
}
