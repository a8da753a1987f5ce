package session

import (
	"strings"
	"time"
)

// Validator decides whether a session is still usable at a given time.
// Implementations must be pure: no I/O, no mutation of the session.
type Validator interface {
	Validate(s *Session, now time.Time) bool
}

// Extractor derives the identity token from a session's cookies.
// It reports false when the cookies carry no usable token.
type Extractor interface {
	Extract(cookies []Cookie, now time.Time) (string, bool)
}

// CookieValidator accepts a session whose cookies have not expired.
//
// With Required set, every named cookie must be present, non-empty and unexpired.
// Without it, at least one cookie must be unexpired. ClockSkew shortens lifetimes so
// a cookie about to expire is treated as already gone.
type CookieValidator struct {
	Required  []string
	ClockSkew time.Duration
}

// Validate implements Validator.
func (v CookieValidator) Validate(s *Session, now time.Time) bool {
	if s == nil || len(s.Cookies) == 0 {
		return false
	}
	at := now.Add(v.ClockSkew)

	if len(v.Required) == 0 {
		for _, c := range s.Cookies {
			if !c.Expired(at) {
				return true
			}
		}
		return false
	}

	for _, name := range v.Required {
		c, ok := s.Cookie(name)
		if !ok || strings.TrimSpace(c.Value) == "" || c.Expired(at) {
			return false
		}
	}
	return true
}

const (
	// DefaultTokenCookie is the cookie that carries the Cognito id token.
	DefaultTokenCookie = "CognitoIdentityToken"

	cognitoCookiePrefix  = "CognitoIdentityServiceProvider."
	cognitoIDTokenSuffix = ".idToken"
)

// CookieExtractor returns the value of the identity-token cookie.
//
// Besides the exact Name, Cognito's per-user cookie names
// ("CognitoIdentityServiceProvider.<client>.<user>.idToken") are recognized.
type CookieExtractor struct {
	Name      string
	ClockSkew time.Duration
}

// Extract implements Extractor.
func (e CookieExtractor) Extract(cookies []Cookie, now time.Time) (string, bool) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		name = DefaultTokenCookie
	}
	at := now.Add(e.ClockSkew)

	for _, c := range cookies {
		if c.Name != name && !isCognitoIDTokenCookie(c.Name) {
			continue
		}
		v := strings.TrimSpace(c.Value)
		if v == "" || c.Expired(at) {
			continue
		}
		return v, true
	}
	return "", false
}

func isCognitoIDTokenCookie(name string) bool {
	return strings.HasPrefix(name, cognitoCookiePrefix) &&
		strings.HasSuffix(name, cognitoIDTokenSuffix) &&
		len(name) > len(cognitoCookiePrefix)+len(cognitoIDTokenSuffix)
}
