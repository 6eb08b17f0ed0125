package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.AccessTokenTTL != 30*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want 30m", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 14*24*time.Hour {
		t.Errorf("RefreshTokenTTL = %v, want 336h", cfg.RefreshTokenTTL)
	}
	if cfg.SessionStore != "principal" {
		t.Errorf("SessionStore = %q, want principal", cfg.SessionStore)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("SESSION_STORE", "redis")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.AccessTokenTTL != 5*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want 5m", cfg.AccessTokenTTL)
	}
	if cfg.SessionStore != "redis" {
		t.Errorf("SessionStore = %q, want redis", cfg.SessionStore)
	}
}

func TestValidateReleaseModeRequiresSecrets(t *testing.T) {
	cfg := &Config{
		GinMode:         "release",
		SessionStore:    "principal",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 14 * 24 * time.Hour,
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing secrets in release mode")
	}

	cfg.JWTAccessSecret = "same"
	cfg.JWTRefreshSecret = "same"
	cfg.CookieSecret = "cookie"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for identical access/refresh secrets")
	}

	cfg.JWTRefreshSecret = "different"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestValidateRejectsUnknownSessionStore(t *testing.T) {
	cfg := &Config{
		GinMode:         "debug",
		SessionStore:    "dynamodb",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 14 * 24 * time.Hour,
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown session store")
	}
}
