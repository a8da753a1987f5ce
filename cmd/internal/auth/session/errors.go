package session

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreRead is returned when persisted session data is corrupt or unreadable.
	// A store with nothing persisted is not an error.
	ErrStoreRead = errors.New("session store read failed")

	// ErrStoreWrite is returned when a freshly obtained session cannot be persisted.
	ErrStoreWrite = errors.New("session store write failed")

	// ErrLoginFailed is returned when the login procedure cannot produce a session.
	ErrLoginFailed = errors.New("login failed")

	// ErrTokenExtraction is returned when a freshly logged-in session yields no identity token.
	ErrTokenExtraction = errors.New("identity token extraction failed")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)

// ResolveError is the failure returned by Resolver.Resolve.
//
// Kind is one of ErrStoreRead, ErrStoreWrite, ErrLoginFailed or ErrTokenExtraction.
// Err is the underlying cause, if any.
type ResolveError struct {
	Kind error
	Err  error
}

func (e *ResolveError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	if errors.Is(e.Err, e.Kind) {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind.Error(), e.Err)
}

func (e *ResolveError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func resolveErr(kind, cause error) error {
	return &ResolveError{Kind: kind, Err: cause}
}
