package app

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{
		"KEEPER_LOG_LEVEL", "KEEPER_LOG_FORMAT", "KEEPER_STORE", "KEEPER_SESSION_FILE",
		"KEEPER_PROFILE", "KEEPER_LOGIN_TIMEOUT", "KEEPER_DB_MAX_CONNS", "KEEPER_SERVE_ADDR",
	} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	if cfg.LogLevel != "info" || cfg.LogFormat != "pretty" {
		t.Fatalf("log defaults: level=%q format=%q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.Store != StoreFile {
		t.Fatalf("store default=%q", cfg.Store)
	}
	if cfg.Profile != "default" {
		t.Fatalf("profile default=%q", cfg.Profile)
	}
	if cfg.LoginTimeout != 60*time.Second {
		t.Fatalf("login timeout default=%v", cfg.LoginTimeout)
	}
	if cfg.DBMaxConns != 4 {
		t.Fatalf("db max conns default=%d", cfg.DBMaxConns)
	}
	if cfg.ServeAddr != "127.0.0.1:8787" {
		t.Fatalf("serve addr default=%q", cfg.ServeAddr)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("KEEPER_STORE", "Redis")
	t.Setenv("KEEPER_REDIS_DB", "3")
	t.Setenv("KEEPER_LOGIN_TIMEOUT", "5s")
	t.Setenv("KEEPER_PASSWORD", " spaces kept ")

	cfg := LoadConfig()
	if cfg.Store != StoreRedis {
		t.Fatalf("store=%q want redis", cfg.Store)
	}
	if cfg.RedisDB != 3 {
		t.Fatalf("redis db=%d", cfg.RedisDB)
	}
	if cfg.LoginTimeout != 5*time.Second {
		t.Fatalf("login timeout=%v", cfg.LoginTimeout)
	}
	if cfg.Password != " spaces kept " {
		t.Fatalf("password must not be trimmed, got %q", cfg.Password)
	}
}

func TestLoadConfig_MalformedFallsBack(t *testing.T) {
	t.Setenv("KEEPER_LOGIN_TIMEOUT", "-1s")
	t.Setenv("KEEPER_REDIS_DB", "abc")

	cfg := LoadConfig()
	if cfg.LoginTimeout != 60*time.Second {
		t.Fatalf("login timeout=%v want default", cfg.LoginTimeout)
	}
	if cfg.RedisDB != 0 {
		t.Fatalf("redis db=%d want default", cfg.RedisDB)
	}
}
