package app

import (
	"strings"
	"testing"

	"keeper/cmd/security/token"
)

func TestValidateSecurityConfig_HMAC(t *testing.T) {
	cfg := Config{RequireTokenHMAC: true, ServeAddr: "127.0.0.1:8787"}

	t.Setenv(token.HMACEnvKey, "")
	if err := ValidateSecurityConfig(cfg, false); err == nil || !strings.Contains(err.Error(), "missing") {
		t.Fatalf("expected missing-key error, got %v", err)
	}

	t.Setenv(token.HMACEnvKey, "short")
	if err := ValidateSecurityConfig(cfg, false); err == nil || !strings.Contains(err.Error(), "too short") {
		t.Fatalf("expected too-short error, got %v", err)
	}

	t.Setenv(token.HMACEnvKey, strings.Repeat("k", 32))
	if err := ValidateSecurityConfig(cfg, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateSecurityConfig_ServeAddr(t *testing.T) {
	t.Parallel()

	cases := []struct {
		addr    string
		key     string
		wantErr bool
	}{
		{addr: "127.0.0.1:8787"},
		{addr: "[::1]:8787"},
		{addr: "localhost:8787"},
		{addr: "0.0.0.0:8787", wantErr: true},
		{addr: ":8787", wantErr: true},
		{addr: "0.0.0.0:8787", key: "secret"},
	}

	for _, tc := range cases {
		err := ValidateSecurityConfig(Config{ServeAddr: tc.addr, ServeKey: tc.key}, true)
		if (err != nil) != tc.wantErr {
			t.Fatalf("addr=%q key=%q err=%v wantErr=%v", tc.addr, tc.key, err, tc.wantErr)
		}
	}

	if err := ValidateSecurityConfig(Config{ServeAddr: "0.0.0.0:8787"}, false); err != nil {
		t.Fatalf("address is irrelevant outside serve mode: %v", err)
	}
}
