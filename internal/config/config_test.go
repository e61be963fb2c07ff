package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/insight")
	t.Setenv("HUMANTIC_API_KEY", "hk")
	t.Setenv("LLM_API_KEY", "lk")
	t.Setenv("CORS_ORIGINS", " http://a.test , ,http://b.test")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.CacheExpiry() != 30*24*time.Hour {
		t.Fatalf("unexpected expiry %v", cfg.CacheExpiry())
	}
	if cfg.ProcessingDelay() != 35*time.Second {
		t.Fatalf("unexpected delay %v", cfg.ProcessingDelay())
	}
	if cfg.HumanticTimeout() != 30*time.Second || cfg.LLMTimeout() != 60*time.Second {
		t.Fatalf("unexpected timeouts %v %v", cfg.HumanticTimeout(), cfg.LLMTimeout())
	}
	if cfg.ForceRefreshMax != 3 || cfg.ForceRefreshWindow() != time.Hour {
		t.Fatalf("unexpected force refresh budget %d/%v", cfg.ForceRefreshMax, cfg.ForceRefreshWindow())
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
	}
}

func TestLoadConfigRequiresProviderKeys(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/insight")
	t.Setenv("HUMANTIC_API_KEY", "")
	t.Setenv("LLM_API_KEY", "lk")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when HUMANTIC_API_KEY is empty")
	}
}
