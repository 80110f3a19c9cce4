package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-chat-orderflow/internal/observability"
	"github.com/imrishuroy/go-chat-orderflow/internal/validation"
)

// RegisterOrdersRoutes registers the order lookup used by staff tooling.
func RegisterOrdersRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()

	r.GET("/orders/:id", func(c *gin.Context) {
		ctx := c.Request.Context()

		var uri validation.OrderURI
		if err := validation.BindURIAndValidate(c, &uri, v); err != nil {
			return
		}

		order, err := cfg.Orders.Get(ctx, uri.OrderID)
		if err != nil {
			observability.FromContext(ctx).Error("order lookup failed",
				zap.String("order_id", uri.OrderID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order_lookup_failed"})
			return
		}
		if order == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found", "order_id": uri.OrderID})
			return
		}
		c.JSON(http.StatusOK, order)
	})

	// The ledger entry shows what the CRM answered for the order's submission.
	r.GET("/orders/:id/submission", func(c *gin.Context) {
		ctx := c.Request.Context()
		logger := observability.FromContext(ctx)

		var uri validation.OrderURI
		if err := validation.BindURIAndValidate(c, &uri, v); err != nil {
			return
		}

		order, err := cfg.Orders.Get(ctx, uri.OrderID)
		if err != nil {
			logger.Error("order lookup failed", zap.String("order_id", uri.OrderID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order_lookup_failed"})
			return
		}
		if order == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found", "order_id": uri.OrderID})
			return
		}
		if order.IdempotencyKey == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_submitted", "order_id": uri.OrderID})
			return
		}

		rec, err := cfg.Submissions.Get(ctx, order.IdempotencyKey)
		if err != nil {
			logger.Error("submission lookup failed", zap.String("order_id", uri.OrderID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "submission_lookup_failed"})
			return
		}
		if rec == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "submission_not_found", "order_id": uri.OrderID})
			return
		}
		c.JSON(http.StatusOK, rec)
	})
}
