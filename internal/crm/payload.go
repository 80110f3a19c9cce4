package crm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-chat-orderflow/internal/observability"
)

const (
	// QtyUnit is the CRM amount of one piece.
	QtyUnit = 1000
	// MoneyUnit converts tenge to tiyn.
	MoneyUnit = 100

	ChannelTag    = "📱 WhatsApp бот"
	AddressMarker = "📍 "
	ClientName    = "WhatsApp клиент"

	commentSeparator = " | "
	dateLayout       = "2006-01-02 15:04"
)

// ErrNoLineItems is returned when no cart line maps to a CRM product.
var ErrNoLineItems = errors.New("no cart lines map to crm products")

// Deployment holds the fixed CRM ids of this installation.
type Deployment struct {
	OrganizationID int64
	TradePointID   int64
	CityID         int64
	SalesChannelID int64
}

// Line is one cart line to translate.
type Line struct {
	VariantID string
	Qty       int
	Price     int64
}

// Draft is the completed checkout handed to the assembler.
type Draft struct {
	Phone   string
	Address string
	Payment string
	Comment string
	Lines   []Line
}

// Total is the sum of price*qty over all lines, mapped or not.
func (d Draft) Total() int64 {
	var total int64
	for _, l := range d.Lines {
		total += l.Price * int64(l.Qty)
	}
	return total
}

type Payment struct {
	ID          int64  `json:"id"`
	Sum         int64  `json:"sum"`
	PaymentType string `json:"payment_type"`
}

type Nomenclature struct {
	ID          int64  `json:"id"`
	Amount      int64  `json:"amount"`
	CategoryID  int64  `json:"category_id"`
	Title       string `json:"title"`
	Promotional bool   `json:"promotional"`
}

type Coordinates struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type Details struct {
	Phone       string      `json:"phone"`
	ClientName  string      `json:"client_name"`
	Street      *string     `json:"street"`
	Building    *string     `json:"building"`
	Entrance    *string     `json:"entrance"`
	Floor       *string     `json:"floor"`
	Room        *string     `json:"room"`
	CityID      int64       `json:"city_id"`
	Coordinates Coordinates `json:"coordinates"`
}

// Payload is the body of POST /order/orders.
type Payload struct {
	UUID           string         `json:"uuid"`
	Date           string         `json:"date"`
	Comment        string         `json:"comment"`
	IsFiscal       bool           `json:"is_fiscal"`
	OrganizationID int64          `json:"organization_id"`
	TradePointID   int64          `json:"trade_point_id"`
	SalesChannelID int64          `json:"sales_channel_id"`
	OrderTags      []string       `json:"order_tags"`
	Payments       []Payment      `json:"payments"`
	Nomenclatures  []Nomenclature `json:"nomenclatures"`
	Details        Details        `json:"details"`
}

// Assembler turns a Draft into a Payload.
type Assembler struct {
	mapping    *Mapping
	deployment Deployment
	newToken   func() string
	nowFunc    func() time.Time
}

type AssemblerOption func(*Assembler)

// WithTokenSource overrides the idempotency token generator.
func WithTokenSource(fn func() string) AssemblerOption {
	return func(a *Assembler) { a.newToken = fn }
}

// WithAssemblerClock overrides the payload timestamp source.
func WithAssemblerClock(fn func() time.Time) AssemblerOption {
	return func(a *Assembler) { a.nowFunc = fn }
}

func NewAssembler(mapping *Mapping, deployment Deployment, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		mapping:    mapping,
		deployment: deployment,
		newToken:   func() string { return uuid.NewString() },
		nowFunc:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Nomenclatures translates mapped lines. Unmapped variants are logged and skipped.
func (a *Assembler) Nomenclatures(ctx context.Context, lines []Line) []Nomenclature {
	logger := observability.FromContext(ctx)
	noms := make([]Nomenclature, 0, len(lines))
	for _, l := range lines {
		p, ok := a.mapping.Product(l.VariantID)
		if !ok {
			logger.Warn("crm: no product mapping, line skipped", zap.String("variant_id", l.VariantID))
			continue
		}
		noms = append(noms, Nomenclature{
			ID:         p.ID,
			Amount:     int64(l.Qty) * QtyUnit,
			CategoryID: p.CategoryID,
			Title:      p.Title,
		})
	}
	return noms
}

// Payments builds the single payment entry for total tenge.
func (a *Assembler) Payments(label string, total int64) []Payment {
	pm := a.mapping.Payment(label)
	return []Payment{{ID: pm.ID, Sum: total * MoneyUnit, PaymentType: pm.PaymentType}}
}

// Comment joins the customer comment, the channel tag and the raw address.
func Comment(comment, address string) string {
	parts := make([]string, 0, 3)
	if comment != "" {
		parts = append(parts, comment)
	}
	parts = append(parts, ChannelTag)
	if address != "" {
		parts = append(parts, AddressMarker+address)
	}
	return strings.Join(parts, commentSeparator)
}

// Assemble builds the payload. It fails with ErrNoLineItems before a token
// is drawn when nothing in the draft maps to a CRM product.
func (a *Assembler) Assemble(ctx context.Context, d Draft) (*Payload, error) {
	noms := a.Nomenclatures(ctx, d.Lines)
	if len(noms) == 0 {
		return nil, ErrNoLineItems
	}

	payment := d.Payment
	if payment == "" {
		payment = a.mapping.DefaultPayment
	}

	details := Details{
		Phone:      NormalizePhone(d.Phone),
		ClientName: ClientName,
		CityID:     a.deployment.CityID,
	}
	if strings.TrimSpace(d.Address) != "" {
		addr := ParseAddress(d.Address)
		details.Street = strPtr(addr.Street)
		details.Building = strPtr(addr.Building)
		details.Entrance = optional(addr.Entrance)
		details.Floor = optional(addr.Floor)
		details.Room = optional(addr.Room)
	}

	return &Payload{
		UUID:           a.newToken(),
		Date:           a.nowFunc().Format(dateLayout),
		Comment:        Comment(d.Comment, d.Address),
		OrganizationID: a.deployment.OrganizationID,
		TradePointID:   a.deployment.TradePointID,
		SalesChannelID: a.deployment.SalesChannelID,
		OrderTags:      []string{},
		Payments:       a.Payments(payment, d.Total()),
		Nomenclatures:  noms,
		Details:        details,
	}, nil
}

func strPtr(s string) *string { return &s }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
