package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-chat-orderflow/internal/aws"
	"github.com/imrishuroy/go-chat-orderflow/internal/catalog"
	"github.com/imrishuroy/go-chat-orderflow/internal/checkout"
	"github.com/imrishuroy/go-chat-orderflow/internal/config"
	"github.com/imrishuroy/go-chat-orderflow/internal/crm"
	"github.com/imrishuroy/go-chat-orderflow/internal/dialogue"
	"github.com/imrishuroy/go-chat-orderflow/internal/handlers"
	"github.com/imrishuroy/go-chat-orderflow/internal/i18n"
	"github.com/imrishuroy/go-chat-orderflow/internal/idempotency"
	"github.com/imrishuroy/go-chat-orderflow/internal/notify"
	"github.com/imrishuroy/go-chat-orderflow/internal/observability"
	"github.com/imrishuroy/go-chat-orderflow/internal/orders"
	"github.com/imrishuroy/go-chat-orderflow/internal/session"
	"github.com/imrishuroy/go-chat-orderflow/internal/whatsapp"
)

const serviceName = "go-chat-orderflow"

// pinger reports whether the session store is reachable.
type pinger interface {
	Ping(ctx context.Context) error
}

func setupRouter(logger *zap.Logger, cfg handlers.HandlerConfig, sessions pinger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), handlers.RequestLogger(logger))

	// health
	r.GET("/health", func(c *gin.Context) {
		redis := "ok"
		if err := sessions.Ping(c.Request.Context()); err != nil {
			redis = "down"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "redis": redis})
	})
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": serviceName, "status": "running"})
	})

	handlers.RegisterWebhookRoutes(r, cfg)
	handlers.RegisterOrdersRoutes(r, cfg)

	return r
}

// openSessionStore prefers Redis and falls back to process memory when it is
// unreachable, so the bot keeps answering with short-lived sessions.
func openSessionStore(ctx context.Context, cfg config.Config, logger *zap.Logger) interface {
	session.Store
	pinger
} {
	client, err := session.Dial(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("redis unavailable, sessions kept in memory", zap.Error(err))
		return session.NewMemoryStore()
	}
	return session.NewRedisStore(client, cfg.SessionTTL, logger)
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.InitTracing(ctx, serviceName, cfg.TraceEndpoint)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	loc, err := cfg.Business.Location()
	if err != nil {
		logger.Fatal("invalid business time zone", zap.Error(err))
	}
	localNow := func() time.Time { return time.Now().In(loc) }

	menu, err := catalog.Load()
	if err != nil {
		logger.Fatal("failed to load menu", zap.Error(err))
	}
	texts, err := i18n.Load()
	if err != nil {
		logger.Fatal("failed to load locales", zap.Error(err))
	}
	mapping, err := crm.LoadMapping()
	if err != nil {
		logger.Fatal("failed to load crm mapping", zap.Error(err))
	}

	clients, err := aws.NewAWSClients(ctx, cfg.AWSRegion, cfg.AWSEndpoint)
	if err != nil {
		logger.Fatal("failed to init aws clients", zap.Error(err))
	}

	var notifier notify.Notifier
	if cfg.NotifyQueueURL != "" {
		notifier = notify.NewQueue(aws.NewPublisher(clients.SQS, cfg.NotifyQueueURL))
	} else {
		notifier = notify.NewTelegram(cfg.Telegram.APIBase, cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.Timeout)
	}

	orderStore := orders.NewStore(clients.DynamoDB, cfg.OrdersTable, cfg.OrdersRetention)
	assembler := crm.NewAssembler(mapping, crm.Deployment{
		OrganizationID: int64(cfg.CRM.OrganizationID),
		TradePointID:   int64(cfg.CRM.TradePointID),
		CityID:         int64(cfg.CRM.CityID),
		SalesChannelID: int64(cfg.CRM.SalesChannelID),
	}, crm.WithAssemblerClock(localNow))
	crmClient := crm.NewClient(cfg.CRM.BaseURL, cfg.CRM.Token, cfg.CRM.Timeout)
	if !crmClient.Configured() {
		logger.Warn("crm token not set, orders will be stored without submission")
	}
	ledger := idempotency.NewStore(clients.DynamoDB, cfg.SubmissionsTable, cfg.SubmissionsTTL)
	placer := checkout.NewService(
		orderStore,
		ledger,
		assembler,
		crmClient,
		checkout.WithNotifier(notifier),
		checkout.WithMetrics(aws.NewMetrics(clients.CloudWatch, cfg.MetricsNamespace)),
		checkout.WithClock(localNow),
	)

	store := openSessionStore(ctx, cfg, logger)
	engine := dialogue.NewEngine(
		session.NewManager(store, cfg.SessionIdleTimeout),
		menu, texts, placer,
		dialogue.Settings{MinOrder: cfg.Business.MinOrder, DeliveryTime: cfg.Business.DeliveryTime},
	)

	wa := whatsapp.NewClient(cfg.WhatsApp.APIBase, cfg.WhatsApp.PhoneID, cfg.WhatsApp.Token, cfg.WhatsApp.Timeout)
	if !wa.Configured() {
		logger.Warn("whatsapp credentials not set, replies will be dropped")
	}

	r := setupRouter(logger, handlers.HandlerConfig{
		Dialogue:    engine,
		Sender:      wa,
		Orders:      orderStore,
		Submissions: ledger,
		VerifyToken: cfg.WhatsApp.VerifyToken,
	}, store)

	if cfg.RunLocal {
		logger.Info("running local server", zap.String("addr", cfg.Addr))
		if err := r.Run(cfg.Addr); err != nil {
			logger.Fatal("failed to run local server", zap.Error(err))
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		resp, err := adapter.ProxyWithContext(ctx, req)
		observability.Flush(ctx)
		return resp, err
	})
}
