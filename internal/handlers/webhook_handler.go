package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-chat-orderflow/internal/observability"
	"github.com/imrishuroy/go-chat-orderflow/internal/validation"
	"github.com/imrishuroy/go-chat-orderflow/internal/whatsapp"
)

// RegisterWebhookRoutes registers the WhatsApp verification and delivery
// endpoints. Deliveries are always acknowledged with 200 so Meta does not
// redeliver them; the body says whether processing succeeded.
func RegisterWebhookRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()

	r.GET("/webhook", func(c *gin.Context) {
		var q validation.VerifyQuery
		if err := validation.BindQueryAndValidate(c, &q, v, http.StatusForbidden); err != nil {
			return
		}
		challenge, ok := whatsapp.Verify(q.Mode, q.Token, q.Challenge, cfg.VerifyToken)
		if !ok {
			observability.FromContext(c.Request.Context()).Warn("webhook verification refused",
				zap.String("mode", q.Mode))
			c.String(http.StatusForbidden, "Forbidden")
			return
		}
		c.String(http.StatusOK, challenge)
	})

	r.POST("/webhook", func(c *gin.Context) {
		ctx := c.Request.Context()
		logger := observability.FromContext(ctx)
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("webhook handling panicked", zap.Any("panic", rec))
				c.JSON(http.StatusOK, gin.H{"status": "error"})
			}
		}()

		var payload whatsapp.Webhook
		if err := validation.BindAndValidate(c, &payload, v, http.StatusOK); err != nil {
			logger.Warn("webhook payload rejected", zap.Error(err))
			return
		}
		if payload.Object != whatsapp.ObjectBusinessAccount {
			logger.Debug("webhook for another object ignored", zap.String("object", payload.Object))
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}

		for _, ev := range payload.Events() {
			deliver(ctx, cfg, ev)
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// deliver runs one customer event through the dialogue and sends the replies.
// Send failures are logged; the session has already advanced.
func deliver(ctx context.Context, cfg HandlerConfig, ev whatsapp.Inbound) {
	logger := observability.FromContext(ctx).With(
		zap.String("customer", ev.From),
		zap.String("message_id", ev.MessageID))
	ctx = observability.WithLogger(ctx, logger)

	out := cfg.Dialogue.Handle(ctx, ev.From, ev.Text)
	fields := []zap.Field{zap.String("rule", out.Rule), zap.Int("replies", len(out.Messages))}
	if out.Session != nil {
		fields = append(fields, zap.String("state", string(out.Session.State)))
	}
	logger.Info("event handled", fields...)

	if out.Receipt != nil && out.Receipt.Order != nil {
		logger.Info("order confirmed",
			zap.String("order_id", out.Receipt.Order.OrderID),
			zap.Bool("crm_success", out.Receipt.Submission.Success),
			zap.String("crm_error", out.Receipt.Submission.Error))
	}

	for _, msg := range out.Messages {
		if err := cfg.Sender.Send(ctx, ev.From, msg); err != nil {
			logger.Error("reply not delivered", zap.Stringer("kind", msg.Kind), zap.Error(err))
		}
	}
}
