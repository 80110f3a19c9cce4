// Package notify tells staff about new orders, either directly through a
// Telegram bot or through an SQS queue drained by cmd/worker.
package notify

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/imrishuroy/go-chat-orderflow/internal/orders"
)

const placeholder = "—"

var amounts = message.NewPrinter(language.English)

// Notifier delivers the staff summary of an order. Implementations are best-effort.
type Notifier interface {
	Notify(ctx context.Context, order *orders.Order) error
}

// Summary renders the Markdown staff message for an order.
func Summary(o *orders.Order) string {
	var lines strings.Builder
	for _, l := range o.Lines {
		fmt.Fprintf(&lines, "  • %s (%s) x%d — %s тг\n", l.Name, l.Variant, l.Qty, amounts.Sprintf("%d", l.Sum()))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🆕 *НОВЫЙ ЗАКАЗ #%s*\n\n", o.Number)
	fmt.Fprintf(&b, "📱 %s\n", o.Customer)
	fmt.Fprintf(&b, "📞 %s\n", orDash(o.ContactPhone))
	fmt.Fprintf(&b, "📍 %s\n\n", orDash(o.Address))
	fmt.Fprintf(&b, "🛒 *Заказ:*\n%s\n", lines.String())
	fmt.Fprintf(&b, "💰 *Итого: %s тг*\n", amounts.Sprintf("%d", o.Total))
	fmt.Fprintf(&b, "💳 %s\n", orDash(o.Payment))
	fmt.Fprintf(&b, "💬 %s\n", orDash(o.Comment))
	switch o.SubmissionStatus {
	case orders.SubmissionSubmitted:
		fmt.Fprintf(&b, "🔗 CRM #%s\n", orDash(o.ForeignOrderID))
	case orders.SubmissionFailed, orders.SubmissionSkipped:
		fmt.Fprintf(&b, "⚠️ CRM: %s\n", orDash(o.SubmissionError))
	}
	fmt.Fprintf(&b, "\n⏰ %s", o.CreatedAt.Format("15:04 02.01.2006"))
	return b.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
