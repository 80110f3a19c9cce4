package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-chat-orderflow/internal/aws"
	"github.com/imrishuroy/go-chat-orderflow/internal/config"
	"github.com/imrishuroy/go-chat-orderflow/internal/notify"
	"github.com/imrishuroy/go-chat-orderflow/internal/observability"
	"github.com/imrishuroy/go-chat-orderflow/internal/orders"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.InitTracing(context.Background(), "go-chat-orderflow-worker", cfg.TraceEndpoint)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	clients, err := aws.NewAWSClients(context.Background(), cfg.AWSRegion, cfg.AWSEndpoint)
	if err != nil {
		logger.Fatal("failed to init aws clients", zap.Error(err))
	}

	telegram := notify.NewTelegram(cfg.Telegram.APIBase, cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.Timeout)
	if !telegram.Configured() {
		logger.Warn("telegram not configured, notifications will be dropped")
	}
	p := NewProcessor(orders.NewStore(clients.DynamoDB, cfg.OrdersTable, cfg.OrdersRetention), telegram)

	lambda.Start(func(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
		logger.Info("received sqs batch", zap.Int("records", len(ev.Records)))
		resp, err := p.Handle(observability.WithLogger(ctx, logger), ev)
		observability.Flush(ctx)
		return resp, err
	})
}
