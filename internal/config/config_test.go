package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SessionIdleTimeout != 30*time.Minute {
		t.Fatalf("expected 30m idle timeout, got %s", cfg.SessionIdleTimeout)
	}
	if cfg.SessionTTL != time.Hour {
		t.Fatalf("expected 1h session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.CRM.Timeout != 15*time.Second || cfg.Telegram.Timeout != 10*time.Second {
		t.Fatalf("unexpected integration timeouts: crm=%s telegram=%s", cfg.CRM.Timeout, cfg.Telegram.Timeout)
	}
	if cfg.CRM.CityID != 1 || cfg.Business.MinOrder != 2000 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_PrefixedOverrides(t *testing.T) {
	t.Setenv("CRM_TOKEN", "secret")
	t.Setenv("CRM_CITY_ID", "7")
	t.Setenv("BUSINESS_MIN_ORDER", "5000")
	t.Setenv("WHATSAPP_PHONE_ID", "123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CRM.Token != "secret" || cfg.CRM.CityID != 7 {
		t.Fatalf("crm overrides not applied: %+v", cfg.CRM)
	}
	if cfg.Business.MinOrder != 5000 {
		t.Fatalf("expected min order 5000, got %d", cfg.Business.MinOrder)
	}
	if cfg.WhatsApp.PhoneID != "123" {
		t.Fatalf("expected phone id 123, got %q", cfg.WhatsApp.PhoneID)
	}
}

func TestLoad_AWSAndTracing(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_ENDPOINT_OVERRIDE", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AWSRegion != "us-east-1" || cfg.AWSEndpoint != "" || cfg.TraceEndpoint != "" {
		t.Fatalf("unexpected defaults: region=%q endpoint=%q trace=%q", cfg.AWSRegion, cfg.AWSEndpoint, cfg.TraceEndpoint)
	}

	t.Setenv("AWS_REGION", "eu-central-1")
	t.Setenv("AWS_ENDPOINT_OVERRIDE", "http://localhost:4566")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4318")

	cfg, err = Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AWSRegion != "eu-central-1" || cfg.AWSEndpoint != "http://localhost:4566" {
		t.Fatalf("aws overrides not applied: region=%q endpoint=%q", cfg.AWSRegion, cfg.AWSEndpoint)
	}
	if cfg.TraceEndpoint != "http://collector:4318" {
		t.Fatalf("expected trace endpoint, got %q", cfg.TraceEndpoint)
	}
}

func TestLoad_Error(t *testing.T) {
	t.Setenv("BUSINESS_MIN_ORDER", "lots")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestBusiness_Location(t *testing.T) {
	loc, err := Business{TimeZone: "Asia/Almaty"}.Location()
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if loc.String() != "Asia/Almaty" {
		t.Fatalf("unexpected location %s", loc)
	}
	if _, err := (Business{TimeZone: "Mars/Olympus"}).Location(); err == nil {
		t.Fatal("expected error for unknown zone")
	}
}
