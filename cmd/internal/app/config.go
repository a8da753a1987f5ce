package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config contains all runtime configuration loaded from environment variables.
// Resolver policy (token cookie, skew, strict store) lives in session.Config.
type Config struct {
	LogLevel  string
	LogFormat string

	Store       string
	SessionFile string
	Profile     string

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LoginURL      string
	Username      string
	Password      string
	UsernameField string
	PasswordField string
	LoginTimeout  time.Duration

	// MetricsFile, when set, receives a Prometheus text-format snapshot after each CLI run.
	MetricsFile string

	// ServeAddr is the listen address for "keeper serve". Loopback by default.
	ServeAddr string
	// ServeKey, when set, must be presented as "Authorization: Bearer <key>" on /token.
	ServeKey string

	// RequireTokenHMAC makes startup fail unless KEEPER_TOKEN_HMAC_KEY is set and long enough.
	RequireTokenHMAC bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		LogLevel:  envString("KEEPER_LOG_LEVEL", "info"),
		LogFormat: envString("KEEPER_LOG_FORMAT", "pretty"),

		Store:       strings.ToLower(envString("KEEPER_STORE", StoreFile)),
		SessionFile: envString("KEEPER_SESSION_FILE", ""),
		Profile:     envString("KEEPER_PROFILE", "default"),

		DatabaseURL: envString("KEEPER_DATABASE_URL", ""),
		DBMaxConns:  int32(envInt("KEEPER_DB_MAX_CONNS", 4)),
		DBMinConns:  int32(envInt("KEEPER_DB_MIN_CONNS", 0)),

		RedisAddr:     envString("KEEPER_REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: envString("KEEPER_REDIS_PASSWORD", ""),
		RedisDB:       envInt("KEEPER_REDIS_DB", 0),

		LoginURL:      envString("KEEPER_LOGIN_URL", ""),
		Username:      envString("KEEPER_USERNAME", ""),
		Password:      os.Getenv("KEEPER_PASSWORD"),
		UsernameField: envString("KEEPER_USERNAME_FIELD", "username"),
		PasswordField: envString("KEEPER_PASSWORD_FIELD", "password"),
		LoginTimeout:  envDuration("KEEPER_LOGIN_TIMEOUT", 60*time.Second),

		MetricsFile: envString("KEEPER_METRICS_FILE", ""),

		ServeAddr: envString("KEEPER_SERVE_ADDR", "127.0.0.1:8787"),
		ServeKey:  envString("KEEPER_SERVE_KEY", ""),

		RequireTokenHMAC: envBool("KEEPER_REQUIRE_TOKEN_HMAC", false),
	}
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// envInt reads a non-negative int; malformed values fall back to def.
func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// envDuration reads a positive duration; malformed values fall back to def.
func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
