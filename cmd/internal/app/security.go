package app

import (
	"errors"
	"fmt"
	"net"

	"keeper/cmd/security/token"
)

// ValidateSecurityConfig enforces keeper's startup policy.
//
// - KEEPER_REQUIRE_TOKEN_HMAC=true demands a 32-byte fingerprint key, so log
//   fingerprints cannot be matched against a leaked token offline.
// - serve mode on a non-loopback address demands KEEPER_SERVE_KEY.
func ValidateSecurityConfig(cfg Config, serving bool) error {
	if cfg.RequireTokenHMAC {
		if _, err := token.HMACKeyFromEnv(32); err != nil {
			switch {
			case errors.Is(err, token.ErrHMACKeyMissing):
				return fmt.Errorf("security policy: KEEPER_REQUIRE_TOKEN_HMAC=true but %s is missing", token.HMACEnvKey)
			case errors.Is(err, token.ErrHMACKeyTooShort):
				return fmt.Errorf("security policy: KEEPER_REQUIRE_TOKEN_HMAC=true but %s is too short (min 32 bytes)", token.HMACEnvKey)
			default:
				return err
			}
		}
	}

	if serving && cfg.ServeKey == "" && !isLoopbackAddr(cfg.ServeAddr) {
		return fmt.Errorf("security policy: serving on %q requires KEEPER_SERVE_KEY", cfg.ServeAddr)
	}

	return nil
}

func isLoopbackAddr(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
