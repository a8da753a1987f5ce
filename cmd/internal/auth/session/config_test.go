package session

import (
	"errors"
	"testing"
	"time"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("KEEPER_TOKEN_COOKIE", "")
	t.Setenv("KEEPER_REQUIRED_COOKIES", "")
	t.Setenv("KEEPER_CLOCK_SKEW", "")
	t.Setenv("KEEPER_STRICT_STORE", "")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TokenCookie != DefaultTokenCookie {
		t.Fatalf("token cookie mismatch: %q", cfg.TokenCookie)
	}
	if cfg.ClockSkew != 30*time.Second {
		t.Fatalf("clock skew mismatch: %v", cfg.ClockSkew)
	}
	if cfg.StrictStore {
		t.Fatalf("strict store should default to false")
	}
	if len(cfg.RequiredCookies) != 0 {
		t.Fatalf("expected no required cookies, got %v", cfg.RequiredCookies)
	}
}

func TestLoadConfigFromEnv_InvalidClockSkew(t *testing.T) {
	t.Setenv("KEEPER_CLOCK_SKEW", "-5s")
	_, err := LoadConfigFromEnv()
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for negative skew, got %v", err)
	}
}

func TestLoadConfigFromEnv_InvalidStrictStore(t *testing.T) {
	t.Setenv("KEEPER_STRICT_STORE", "sometimes")
	_, err := LoadConfigFromEnv()
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for bad bool, got %v", err)
	}
}

func TestLoadConfigFromEnv_Valid(t *testing.T) {
	t.Setenv("KEEPER_TOKEN_COOKIE", "idToken")
	t.Setenv("KEEPER_REQUIRED_COOKIES", " sid, ,csrf ")
	t.Setenv("KEEPER_CLOCK_SKEW", "0s")
	t.Setenv("KEEPER_STRICT_STORE", "true")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TokenCookie != "idToken" {
		t.Fatalf("token cookie mismatch: %q", cfg.TokenCookie)
	}
	if len(cfg.RequiredCookies) != 2 || cfg.RequiredCookies[0] != "sid" || cfg.RequiredCookies[1] != "csrf" {
		t.Fatalf("required cookies mismatch: %v", cfg.RequiredCookies)
	}
	if cfg.ClockSkew != 0 {
		t.Fatalf("clock skew mismatch: %v", cfg.ClockSkew)
	}
	if !cfg.StrictStore {
		t.Fatalf("strict store mismatch")
	}
}
