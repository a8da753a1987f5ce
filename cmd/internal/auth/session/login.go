package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	"keeper/cmd/internal/ids"
)

// LoginProcedure performs a full remote authentication.
//
// Login returns (nil, nil) when the service rejected the credentials and an error for
// transport faults. The Resolver treats both as a failed login.
type LoginProcedure interface {
	Login(ctx context.Context) (*Session, error)
}

// FormLoginConfig configures FormLogin.
type FormLoginConfig struct {
	// LoginURL receives the credentials as an application/x-www-form-urlencoded POST.
	LoginURL string

	Username string
	Password string

	// UsernameField and PasswordField name the form fields. Defaults: "username", "password".
	UsernameField string
	PasswordField string

	// Timeout bounds the whole login exchange, redirects included. Zero means no timeout.
	Timeout time.Duration

	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// FormLogin logs in by posting a form and capturing every cookie the service sets
// along the redirect chain.
type FormLogin struct {
	cfg FormLoginConfig
	now func() time.Time
}

// NewFormLogin validates cfg and returns a login procedure.
func NewFormLogin(cfg FormLoginConfig) (*FormLogin, error) {
	u, err := url.Parse(strings.TrimSpace(cfg.LoginURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: login url %q", ErrConfig, cfg.LoginURL)
	}
	cfg.LoginURL = u.String()

	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("%w: login credentials missing", ErrConfig)
	}
	if cfg.UsernameField == "" {
		cfg.UsernameField = "username"
	}
	if cfg.PasswordField == "" {
		cfg.PasswordField = "password"
	}
	if cfg.Transport == nil {
		cfg.Transport = http.DefaultTransport
	}

	return &FormLogin{cfg: cfg, now: time.Now}, nil
}

// Login implements LoginProcedure.
func (l *FormLogin) Login(ctx context.Context) (*Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	rec := &cookieRecorder{next: l.cfg.Transport, now: l.now}
	client := &http.Client{
		Jar:       jar,
		Transport: rec,
		Timeout:   l.cfg.Timeout,
	}

	form := url.Values{}
	form.Set(l.cfg.UsernameField, l.cfg.Username)
	form.Set(l.cfg.PasswordField, l.cfg.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.cfg.LoginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, nil
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("login request: unexpected status %d", resp.StatusCode)
	}

	cookies := rec.cookies()
	if len(cookies) == 0 {
		return nil, nil
	}

	now := l.now().UTC()
	id, err := ids.NewULID(now)
	if err != nil {
		return nil, err
	}

	return &Session{ID: id, CreatedAt: now, Cookies: cookies}, nil
}

// cookieRecorder captures Set-Cookie attributes that the jar does not expose.
type cookieRecorder struct {
	next http.RoundTripper
	now  func() time.Time

	mu      sync.Mutex
	order   []string
	ordered map[string]struct{}
	byKey   map[string]Cookie
}

func (r *cookieRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	r.record(req.URL, resp.Cookies())
	return resp, nil
}

func (r *cookieRecorder) record(u *url.URL, set []*http.Cookie) {
	if len(set) == 0 {
		return
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byKey == nil {
		r.byKey = make(map[string]Cookie)
		r.ordered = make(map[string]struct{})
	}

	for _, hc := range set {
		c := Cookie{
			Name:     hc.Name,
			Value:    hc.Value,
			Domain:   hc.Domain,
			Path:     hc.Path,
			Secure:   hc.Secure,
			HTTPOnly: hc.HttpOnly,
		}
		if c.Domain == "" {
			c.Domain = u.Hostname()
		}
		if c.Path == "" {
			c.Path = "/"
		}
		switch {
		case hc.MaxAge > 0:
			c.Expires = now.Add(time.Duration(hc.MaxAge) * time.Second).UTC()
		case !hc.Expires.IsZero():
			c.Expires = hc.Expires.UTC()
		}

		key := c.Domain + "|" + c.Path + "|" + c.Name
		deleted := hc.MaxAge < 0 || (hc.MaxAge == 0 && !hc.Expires.IsZero() && !hc.Expires.After(now))
		if deleted {
			delete(r.byKey, key)
			continue
		}
		if _, seen := r.ordered[key]; !seen {
			r.ordered[key] = struct{}{}
			r.order = append(r.order, key)
		}
		r.byKey[key] = c
	}
}

func (r *cookieRecorder) cookies() []Cookie {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Cookie, 0, len(r.byKey))
	for _, key := range r.order {
		if c, ok := r.byKey[key]; ok {
			out = append(out, c)
		}
	}
	return out
}

// IsRejected reports whether err came from a login the service refused,
// as opposed to a transport or store fault.
func IsRejected(err error) bool {
	var re *ResolveError
	return errors.As(err, &re) && errors.Is(re.Kind, ErrLoginFailed) && re.Err == nil
}
