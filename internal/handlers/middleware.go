package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-chat-orderflow/internal/observability"
)

// RequestLogger opens a server span for the request, puts a request-scoped
// logger on the request context and logs each request once it completes.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx := observability.ExtractHeaders(c.Request.Context(), c.Request.Header)
		ctx, span := observability.StartSpan(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("request_id", requestID)))
		defer span.End()

		reqLogger := logger.With(zap.String("request_id", requestID))
		if traceID := observability.TraceID(ctx); traceID != "" {
			reqLogger = reqLogger.With(zap.String("trace_id", traceID))
		}
		c.Request = c.Request.WithContext(observability.WithLogger(ctx, reqLogger))
		c.Header("X-Request-Id", requestID)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
		reqLogger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)))
	}
}
