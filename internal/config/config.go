package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, read from the environment once at startup.
type Config struct {
	RunLocal bool   `env:"RUN_LOCAL"`
	Addr     string `env:"PORT" envDefault:":8080"`

	RedisURL           string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	SessionTTL         time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`

	OrdersTable      string        `env:"ORDERS_TABLE" envDefault:"orders"`
	OrdersRetention  time.Duration `env:"ORDERS_RETENTION" envDefault:"2160h"`
	SubmissionsTable string        `env:"SUBMISSIONS_TABLE" envDefault:"crm-submissions"`
	SubmissionsTTL   time.Duration `env:"SUBMISSIONS_TTL" envDefault:"168h"`
	NotifyQueueURL   string        `env:"NOTIFY_QUEUE_URL"`
	MetricsNamespace string        `env:"METRICS_NAMESPACE" envDefault:"ChatOrderflow"`

	AWSRegion   string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSEndpoint string `env:"AWS_ENDPOINT_OVERRIDE"` // LocalStack

	// TraceEndpoint is the OTLP/HTTP collector URL; empty keeps spans in process.
	TraceEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	WhatsApp WhatsApp `envPrefix:"WHATSAPP_"`
	Telegram Telegram `envPrefix:"TELEGRAM_"`
	CRM      CRM      `envPrefix:"CRM_"`
	Business Business `envPrefix:"BUSINESS_"`
}

// WhatsApp holds Meta Cloud API credentials.
type WhatsApp struct {
	Token       string        `env:"TOKEN"`
	PhoneID     string        `env:"PHONE_ID"`
	VerifyToken string        `env:"VERIFY_TOKEN"`
	APIBase     string        `env:"API_BASE" envDefault:"https://graph.facebook.com/v22.0"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// Telegram holds the staff notification bot settings.
type Telegram struct {
	BotToken string        `env:"BOT_TOKEN"`
	ChatID   string        `env:"CHAT_ID"`
	APIBase  string        `env:"API_BASE" envDefault:"https://api.telegram.org"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// CRM holds the foreign order system endpoint and deployment constants.
type CRM struct {
	BaseURL        string        `env:"BASE_URL" envDefault:"https://ds-api.delres.kz/api/v1"`
	RefsBaseURL    string        `env:"REFS_BASE_URL" envDefault:"https://ds-api.delres.kz/api"`
	Token          string        `env:"TOKEN"`
	Timeout        time.Duration `env:"TIMEOUT" envDefault:"15s"`
	OrganizationID int           `env:"ORGANIZATION_ID" envDefault:"1"`
	TradePointID   int           `env:"TRADE_POINT_ID" envDefault:"1"`
	CityID         int           `env:"CITY_ID" envDefault:"1"`
	SalesChannelID int           `env:"SALES_CHANNEL_ID" envDefault:"1"`
}

// Business holds storefront rules shown to customers.
type Business struct {
	MinOrder     int64  `env:"MIN_ORDER" envDefault:"2000"`
	DeliveryTime string `env:"DELIVERY_TIME" envDefault:"40-60"`
	TimeZone     string `env:"TIMEZONE" envDefault:"Asia/Almaty"`
}

// Location resolves TimeZone. Order numbers and timestamps shown to staff use
// the storefront's local time.
func (b Business) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(b.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", b.TimeZone, err)
	}
	return loc, nil
}

// Load parses Config from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
