package app

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"keeper/cmd/internal/auth/session"
	"keeper/cmd/internal/ids"
)

// Handler returns the routes of the local token server.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.backend.Ping(r.Context()); err != nil {
			http.Error(w, a.backend.Name()+" not ready", http.StatusServiceUnavailable)
			a.log.Info("readyz.store.not_ready", "store", a.backend.Name(), "err", err)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	mux.Handle("GET /token", a.requireKey(http.HandlerFunc(a.handleToken)))
	mux.Handle("GET /session", a.requireKey(http.HandlerFunc(a.handleSession)))
	mux.Handle("GET /metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	return mux
}

func (a *App) handleToken(w http.ResponseWriter, r *http.Request) {
	tok, err := a.resolver.Resolve(r.Context())
	if err != nil {
		status := http.StatusBadGateway
		if session.IsRejected(err) {
			status = http.StatusServiceUnavailable
		}
		a.log.Warn("token.fail", "err", err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(tok + "\n"))
}

// sessionView is the log-safe description of the held session: no cookie values.
type sessionView struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	Cookies   []string  `json:"cookies"`
	Extra     []string  `json:"extra,omitempty"`
}

func describeSession(s *session.Session) sessionView {
	names := s.CookieNames()
	if names == nil {
		names = []string{}
	}
	created := s.CreatedAt
	if created.IsZero() {
		// Documents written by other tools may lack createdAt; a ULID id still dates the login.
		if t, err := ids.Time(s.ID); err == nil {
			created = t.UTC()
		}
	}
	return sessionView{ID: s.ID, CreatedAt: created, Cookies: names, Extra: s.ExtraKeys()}
}

func (a *App) handleSession(w http.ResponseWriter, _ *http.Request) {
	s := a.resolver.Current()
	if s == nil {
		http.Error(w, "no session held", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(describeSession(s))
}

func (a *App) requireKey(next http.Handler) http.Handler {
	if a.cfg.ServeKey == "" {
		return next
	}
	want := []byte(a.cfg.ServeKey)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="keeper"`)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
