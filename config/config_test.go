package config

import (
	"testing"
	"time"
)

func TestDatabaseDSN(t *testing.T) {
	t.Setenv("DB_USER", "cafe")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "10.0.0.5")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "cafe")

	expected := "cafe:secret@tcp(10.0.0.5:3306)/cafe?charset=utf8mb4&parseTime=true&loc=UTC"
	if got := DatabaseDSN(); got != expected {
		t.Fatalf("expected %s, got %s", expected, got)
	}

	t.Setenv("DB_HOST", "/cloudsql/project:region:instance")
	expected = "cafe:secret@unix(/cloudsql/project:region:instance)/cafe?charset=utf8mb4&parseTime=true&loc=UTC"
	if got := DatabaseDSN(); got != expected {
		t.Fatalf("expected %s, got %s", expected, got)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("POOL_SIZE", " 12 ")
	if got := IntFromEnv("POOL_SIZE", 3); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}
	t.Setenv("POOL_SIZE", "many")
	if got := IntFromEnv("POOL_SIZE", 3); got != 3 {
		t.Fatalf("expected fallback 3, got %d", got)
	}

	t.Setenv("SKIP_MIGRATIONS", "TRUE")
	if !BoolFromEnv("SKIP_MIGRATIONS") {
		t.Fatalf("expected true")
	}
	t.Setenv("SKIP_MIGRATIONS", "1")
	if BoolFromEnv("SKIP_MIGRATIONS") {
		t.Fatalf("only \"true\" enables the flag")
	}
}

func TestReportCacheTTL(t *testing.T) {
	t.Setenv("REPORT_CACHE_TTL_MINUTES", "")
	if got := ReportCacheTTL(); got != time.Hour {
		t.Fatalf("expected default 1h, got %s", got)
	}
	t.Setenv("REPORT_CACHE_TTL_MINUTES", "5")
	if got := ReportCacheTTL(); got != 5*time.Minute {
		t.Fatalf("expected 5m, got %s", got)
	}
	t.Setenv("REPORT_CACHE_TTL_MINUTES", "-1")
	if got := ReportCacheTTL(); got != time.Hour {
		t.Fatalf("expected default for negative ttl, got %s", got)
	}
}

func TestConnectRedisWithoutAddressIsNoop(t *testing.T) {
	t.Setenv("REDIS_ADDRESS", "")
	ConnectRedisWithRetry()
	if RedisEnabled() || GetRedisDB() != nil || GetRedisLock() != nil {
		t.Fatalf("expected redis to stay disabled")
	}
}
