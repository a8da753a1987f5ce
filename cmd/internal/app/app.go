// Package app wires the keeper runtime: config, logging, the session store backend,
// the resolver, metrics and the optional local token server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"keeper/cmd/internal/auth/session"
)

// App owns one Resolver for the process lifetime plus the resources behind it.
type App struct {
	cfg Config
	log Logger

	resolver *session.Resolver
	backend  backend
	registry *prometheus.Registry
}

// New constructs a fully wired App. A nil login uses FormLogin built from cfg.
func New(ctx context.Context, cfg Config, log Logger, login session.LoginProcedure) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}

	if login == nil {
		login, err = session.NewFormLogin(session.FormLoginConfig{
			LoginURL:      cfg.LoginURL,
			Username:      cfg.Username,
			Password:      cfg.Password,
			UsernameField: cfg.UsernameField,
			PasswordField: cfg.PasswordField,
			Timeout:       cfg.LoginTimeout,
		})
		if err != nil {
			return nil, err
		}
	}

	registry := prometheus.NewRegistry()
	metrics, err := session.NewMetrics(registry)
	if err != nil {
		return nil, err
	}

	store, be, err := newStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	resolver, err := session.NewResolver(sessCfg, session.Deps{
		Store:   store,
		Login:   login,
		Logger:  log,
		Metrics: metrics,
	})
	if err != nil {
		_ = be.Close()
		return nil, err
	}

	log.Debug("app.ready", "store", be.Name(), "strict_store", sessCfg.StrictStore, "token_cookie", sessCfg.TokenCookie)

	return &App{
		cfg:      cfg,
		log:      log,
		resolver: resolver,
		backend:  be,
		registry: registry,
	}, nil
}

// Resolve returns a usable identity token.
func (a *App) Resolve(ctx context.Context) (string, error) {
	return a.resolver.Resolve(ctx)
}

// Session returns the session currently held by the resolver.
func (a *App) Session() *session.Session {
	return a.resolver.Current()
}

// Serve runs the local token server until ctx is cancelled or the server fails.
func (a *App) Serve(ctx context.Context) error {
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := &http.Server{
		Addr:              a.cfg.ServeAddr,
		Handler:           WithRequestLogging(a.Handler(), a.log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// A cold /token runs a full login.
		WriteTimeout:   a.cfg.LoginTimeout + 15*time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	a.log.Info("server.start", "addr", a.cfg.ServeAddr, "store", a.backend.Name(), "auth", a.cfg.ServeKey != "")

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.log.Info("server.stopped")
	return nil
}

// Close flushes the metrics snapshot (when configured) and releases the store backend.
func (a *App) Close() error {
	var errs []error
	if a.cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(a.cfg.MetricsFile, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if err := a.backend.Close(); err != nil {
		a.log.Error("store.close.fail", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
