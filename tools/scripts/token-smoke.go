// Package main provides a CI-friendly smoke test for a running "keeper serve".
//
// It validates:
//   - /healthz and /readyz answer 200
//   - /token returns a non-empty token that is not cacheable
//   - a second /token is served from memory (same token, login counter unchanged)
//   - /session never exposes cookie values
//   - /metrics exports the keeper_* families
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

const maxReadBytes = 1 << 20 // 1MiB

type smokeClient struct {
	base    string
	key     string
	timeout time.Duration
	http    *http.Client
}

func main() {
	var (
		baseURL = pflag.String("url", "http://127.0.0.1:8787", "keeper serve base URL")
		key     = pflag.String("key", os.Getenv("KEEPER_SERVE_KEY"), "bearer key for /token and /session")
		timeout = pflag.Duration("timeout", 90*time.Second, "Per-step timeout (a cold /token runs a login)")
		verbose = pflag.BoolP("verbose", "v", false, "Verbose output")
	)
	pflag.Parse()

	if err := validateBaseURL(*baseURL); err != nil {
		fatalf("invalid --url: %v", err)
	}

	c := &smokeClient{
		base:    strings.TrimRight(*baseURL, "/"),
		key:     *key,
		timeout: *timeout,
		http:    &http.Client{},
	}
	root := context.Background()

	c.mustStatus(root, "/healthz", http.StatusOK)
	c.mustStatus(root, "/readyz", http.StatusOK)

	tok1, hdr := c.mustGet(root, "/token", true)
	tok1 = strings.TrimSpace(tok1)
	if tok1 == "" {
		fatalf("/token returned an empty body")
	}
	if got := hdr.Get("Cache-Control"); got != "no-store" {
		fatalf("/token cache-control=%q want no-store", got)
	}
	loginsBefore := c.mustMetric(root, `keeper_login_total{result="ok"}`)

	tok2, _ := c.mustGet(root, "/token", true)
	if strings.TrimSpace(tok2) != tok1 {
		fatalf("second /token returned a different token")
	}
	if after := c.mustMetric(root, `keeper_login_total{result="ok"}`); after != loginsBefore {
		fatalf("second /token triggered a login: before=%v after=%v", loginsBefore, after)
	}

	body, _ := c.mustGet(root, "/session", true)
	var view struct {
		ID      string   `json:"id"`
		Cookies []string `json:"cookies"`
	}
	if err := json.Unmarshal([]byte(body), &view); err != nil {
		fatalf("unmarshal /session: %v", err)
	}
	if view.ID == "" || len(view.Cookies) == 0 {
		fatalf("/session incomplete: %s", body)
	}
	if strings.Contains(body, tok1) {
		fatalf("/session leaked the token")
	}

	if *verbose {
		fmt.Printf("session=%s cookies=%v logins=%v\n", view.ID, view.Cookies, loginsBefore)
	}
	fmt.Printf("OK: session=%s token_len=%d\n", view.ID, len(tok1))
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func (c *smokeClient) do(parent context.Context, path string, auth bool) (*http.Response, string, error) {
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, "", err
	}
	if auth && c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxReadBytes))
	if err != nil {
		return nil, "", err
	}
	return resp, string(b), nil
}

func (c *smokeClient) mustStatus(parent context.Context, path string, want int) {
	resp, _, err := c.do(parent, path, false)
	if err != nil {
		fatalf("GET %s: %v", path, err)
	}
	if resp.StatusCode != want {
		fatalf("GET %s: status=%d want=%d", path, resp.StatusCode, want)
	}
}

func (c *smokeClient) mustGet(parent context.Context, path string, auth bool) (string, http.Header) {
	resp, body, err := c.do(parent, path, auth)
	if err != nil {
		fatalf("GET %s: %v", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		fatalf("GET %s: status=%d body=%q", path, resp.StatusCode, strings.TrimSpace(body))
	}
	return body, resp.Header
}

// mustMetric returns the value of one exposition line, 0 when the series is absent.
func (c *smokeClient) mustMetric(parent context.Context, series string) float64 {
	body, _ := c.mustGet(parent, "/metrics", false)
	if !strings.Contains(body, "keeper_resolve_total") {
		fatalf("/metrics missing keeper_resolve_total")
	}

	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := sc.Text()
		rest, ok := strings.CutPrefix(line, series+" ")
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
		if err != nil {
			fatalf("parse %s: %v", series, err)
		}
		return v
	}
	return 0
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
