package token

import (
	"errors"
	"strings"
	"testing"
)

func TestFingerprint_SHA256Mode(t *testing.T) {
	t.Setenv(HMACEnvKey, "")

	got := Fingerprint("tok-123")
	want := HashSHA256Hex("tok-123")[:FingerprintLen]
	if got != want {
		t.Fatalf("Fingerprint()=%q want %q", got, want)
	}
	if strings.Contains(got, "tok") {
		t.Fatalf("fingerprint leaks token text: %q", got)
	}
}

func TestFingerprint_HMACMode(t *testing.T) {
	key := strings.Repeat("k", 32)
	t.Setenv(HMACEnvKey, key)

	got := Fingerprint("tok-123")
	want := HashHMACSHA256Hex("tok-123", []byte(key))[:FingerprintLen]
	if got != want {
		t.Fatalf("Fingerprint()=%q want %q", got, want)
	}
	if got == HashSHA256Hex("tok-123")[:FingerprintLen] {
		t.Fatalf("HMAC mode produced the unkeyed digest")
	}
}

func TestFingerprint_Empty(t *testing.T) {
	t.Setenv(HMACEnvKey, "")
	if got := Fingerprint(""); got != "" {
		t.Fatalf("Fingerprint(\"\")=%q want empty", got)
	}
}

func TestHMACKeyFromEnv(t *testing.T) {
	t.Setenv(HMACEnvKey, "")
	if _, err := HMACKeyFromEnv(32); !errors.Is(err, ErrHMACKeyMissing) {
		t.Fatalf("expected ErrHMACKeyMissing, got %v", err)
	}

	t.Setenv(HMACEnvKey, "short")
	if _, err := HMACKeyFromEnv(32); !errors.Is(err, ErrHMACKeyTooShort) {
		t.Fatalf("expected ErrHMACKeyTooShort, got %v", err)
	}

	t.Setenv(HMACEnvKey, "  "+strings.Repeat("x", 32)+"  ")
	key, err := HMACKeyFromEnv(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(key) != 32 {
		t.Fatalf("expected trimmed 32-byte key, got %d", len(key))
	}
}
