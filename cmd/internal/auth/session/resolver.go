package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"keeper/cmd/internal/ids"
	"keeper/cmd/security/token"
)

// State is a step of one Resolve call.
type State string

const (
	StateEmpty      State = "EMPTY"
	StateMemoryHeld State = "MEMORY_HELD"
	StateValidating State = "VALIDATING"
	StateLoggingIn  State = "LOGGING_IN"
	StatePersisting State = "PERSISTING"
	StateDone       State = "DONE"
	StateFailed     State = "FAILED"
)

// Deps are the collaborators a Resolver composes.
// Store and Login are required; the rest have defaults.
type Deps struct {
	Store     Store
	Login     LoginProcedure
	Validator Validator
	Extractor Extractor

	Logger  *slog.Logger
	Metrics *Metrics

	// Now defaults to time.Now.
	Now func() time.Time
}

// Resolver hands out the identity token of the one session it keeps.
//
// It consults, in order, the session held in memory, the session persisted in the
// Store, and a fresh login. Resolve calls are serialized; one Resolver should live
// for the whole process.
type Resolver struct {
	store     Store
	login     LoginProcedure
	validator Validator
	extractor Extractor
	log       *slog.Logger
	metrics   *Metrics
	now       func() time.Time
	strict    bool

	// sem serializes Resolve; a buffered channel so waiting honors ctx.
	sem chan struct{}

	mu      sync.Mutex
	current *Session
}

// NewResolver builds a Resolver from cfg and deps.
func NewResolver(cfg Config, deps Deps) (*Resolver, error) {
	if deps.Store == nil || deps.Login == nil {
		return nil, fmt.Errorf("%w: resolver needs a store and a login procedure", ErrConfig)
	}

	r := &Resolver{
		store:     deps.Store,
		login:     deps.Login,
		validator: deps.Validator,
		extractor: deps.Extractor,
		log:       deps.Logger,
		metrics:   deps.Metrics,
		now:       deps.Now,
		strict:    cfg.StrictStore,
		sem:       make(chan struct{}, 1),
	}
	if r.validator == nil {
		r.validator = CookieValidator{Required: cfg.RequiredCookies, ClockSkew: cfg.ClockSkew}
	}
	if r.extractor == nil {
		r.extractor = CookieExtractor{Name: cfg.TokenCookie, ClockSkew: cfg.ClockSkew}
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r, nil
}

// Current returns a copy of the session held in memory, or nil before the first
// successful load. Changing the copy does not affect later Resolve calls.
func (r *Resolver) Current() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.clone()
}

func (r *Resolver) held() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Resolver) hold(s *Session) {
	r.mu.Lock()
	r.current = s
	r.mu.Unlock()
}

// Resolve returns a usable identity token, logging in only when neither the held
// nor the persisted session yields one.
//
// Failures are *ResolveError values; match them with errors.Is against ErrStoreRead,
// ErrLoginFailed, ErrStoreWrite or ErrTokenExtraction. A session obtained by a call
// that later failed stays held for the next call.
//
// The one exception: a caller whose ctx ends while it waits behind another call gets
// ctx.Err() as is, since no tier was consulted.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	select {
	case r.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-r.sem }()

	start := r.now()
	c := &resolveCall{r: r, log: r.log, state: StateEmpty, tier: TierMemory}
	if id, err := ids.NewULID(start); err == nil {
		c.log = c.log.With("resolve_id", id)
	}

	tok, err := c.run(ctx)
	elapsed := r.now().Sub(start)
	r.metrics.observeResolve(c.tier, err, elapsed)

	if err != nil {
		c.log.Debug("resolve.fail", "tier", string(c.tier), "err", err, "duration_ms", elapsed.Milliseconds())
		return "", err
	}

	lvl := slog.LevelDebug
	if c.tier == TierLogin {
		lvl = slog.LevelInfo
	}
	c.log.Log(ctx, lvl, "resolve.done",
		"tier", string(c.tier),
		"token_fp", token.Fingerprint(tok),
		"duration_ms", elapsed.Milliseconds(),
	)
	return tok, nil
}

// resolveCall carries the per-call state machine.
type resolveCall struct {
	r     *Resolver
	log   *slog.Logger
	state State
	tier  Tier
}

func (c *resolveCall) enter(next State) {
	c.log.Debug("resolve.state", "from", string(c.state), "to", string(next), "tier", string(c.tier))
	c.state = next
}

func (c *resolveCall) fail(kind, cause error) error {
	c.enter(StateFailed)
	return resolveErr(kind, cause)
}

func (c *resolveCall) run(ctx context.Context) (string, error) {
	r := c.r

	held := r.held()
	if held != nil {
		c.enter(StateMemoryHeld)
	} else {
		c.tier = TierStore
		c.log.Debug("resolve.tier", "tier", string(TierStore))

		loaded, err := r.store.Read(ctx)
		r.metrics.observeStore("read", err)
		if err != nil {
			if r.strict || !errors.Is(err, ErrStoreRead) {
				return "", c.fail(ErrStoreRead, err)
			}
			c.log.Warn("store.read.corrupt", "err", err)
			loaded = nil
		}
		if loaded != nil {
			r.hold(loaded)
			held = loaded
			c.enter(StateMemoryHeld)
		}
	}

	if held != nil {
		c.enter(StateValidating)
		now := r.now()
		if r.validator.Validate(held, now) {
			if tok, ok := r.extractor.Extract(held.Cookies, now); ok {
				c.enter(StateDone)
				return tok, nil
			}
			c.log.Debug("resolve.token.missing", "session_id", held.ID)
		} else {
			c.log.Debug("resolve.session.invalid", "session_id", held.ID)
		}
	}

	c.tier = TierLogin
	c.enter(StateLoggingIn)

	fresh, err := r.login.Login(ctx)
	switch {
	case err != nil:
		r.metrics.observeLogin("error")
		return "", c.fail(ErrLoginFailed, err)
	case fresh == nil:
		r.metrics.observeLogin("rejected")
		return "", c.fail(ErrLoginFailed, nil)
	}
	r.metrics.observeLogin("ok")
	r.hold(fresh)
	c.log.Info("resolve.login.ok", "session_id", fresh.ID, "cookies", len(fresh.Cookies))

	c.enter(StatePersisting)
	err = r.store.Write(ctx, fresh)
	r.metrics.observeStore("write", err)
	if err != nil {
		c.log.Error("store.write.fail", "err", err)
		return "", c.fail(ErrStoreWrite, err)
	}

	tok, ok := r.extractor.Extract(fresh.Cookies, r.now())
	if !ok {
		return "", c.fail(ErrTokenExtraction, nil)
	}
	c.enter(StateDone)
	return tok, nil
}
