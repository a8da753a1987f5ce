package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Options are the command-line overrides applied on top of LoadConfig.
type Options struct {
	Verbose      bool
	Store        string
	SessionFile  string
	PrintSession bool
	Serve        bool

	// Stdout receives the token; defaults to os.Stdout.
	Stdout io.Writer
}

func (o Options) apply(cfg *Config) {
	if o.Verbose {
		cfg.LogLevel = "debug"
	}
	if o.Store != "" {
		cfg.Store = o.Store
	}
	if o.SessionFile != "" {
		cfg.SessionFile = o.SessionFile
	}
}

// Run is the CLI entrypoint used by cmd/keeper.
// It returns an error instead of calling os.Exit to keep defers effective and lint clean.
func Run(opts Options) error {
	cfg := LoadConfig()
	opts.apply(&cfg)
	log := NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	if err := ValidateSecurityConfig(cfg, opts.Serve); err != nil {
		log.Error("config.invalid", "err", err)
		return err
	}
	if err := promptCredentials(&cfg, os.Stdin, os.Stderr); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := New(ctx, cfg, log, nil)
	if err != nil {
		log.Error("app.init.fail", "err", err)
		return err
	}
	defer func() { _ = a.Close() }()

	if opts.Serve {
		return a.Serve(ctx)
	}

	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	return resolveOnce(ctx, a, out, opts.PrintSession)
}

func resolveOnce(ctx context.Context, a *App, out io.Writer, printSession bool) error {
	tok, err := a.Resolve(ctx)
	if err != nil {
		a.log.Error("resolve.fail", "err", err)
		return err
	}

	if printSession {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "    ")
		return enc.Encode(describeSession(a.Session()))
	}
	_, err = fmt.Fprintln(out, tok)
	return err
}
