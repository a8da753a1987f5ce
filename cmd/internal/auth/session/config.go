package session

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the resolver policy.
type Config struct {
	// TokenCookie names the cookie carrying the identity token.
	TokenCookie string

	// RequiredCookies must all be present and unexpired for a session to validate.
	// Empty means "any unexpired cookie".
	RequiredCookies []string

	// ClockSkew is subtracted from cookie lifetimes before they are trusted.
	ClockSkew time.Duration

	// StrictStore makes a corrupt persisted session fail Resolve with ErrStoreRead
	// instead of being treated as absent.
	StrictStore bool
}

// DefaultConfig returns the resolver defaults.
func DefaultConfig() Config {
	return Config{
		TokenCookie: DefaultTokenCookie,
		ClockSkew:   30 * time.Second,
	}
}

// LoadConfigFromEnv loads resolver configuration from environment variables.
//
// Optional:
//   - KEEPER_TOKEN_COOKIE
//   - KEEPER_REQUIRED_COOKIES (comma separated)
//   - KEEPER_CLOCK_SKEW (Go duration, >= 0)
//   - KEEPER_STRICT_STORE (bool)
//
// Returns ErrConfig if a value is present but invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("KEEPER_TOKEN_COOKIE")); v != "" {
		cfg.TokenCookie = v
	}

	if v := os.Getenv("KEEPER_REQUIRED_COOKIES"); v != "" {
		cfg.RequiredCookies = splitList(v)
	}

	if v := os.Getenv("KEEPER_CLOCK_SKEW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, ErrConfig
		}
		cfg.ClockSkew = d
	}

	if v := os.Getenv("KEEPER_STRICT_STORE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.StrictStore = b
	}

	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
