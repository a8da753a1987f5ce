package session

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store abstracts persistence for the single live session.
//
// Implementations hold exactly one session per configuration and overwrite it
// wholesale on every Write.
type Store interface {
	// Read loads the persisted session. It returns (nil, nil) when nothing is persisted
	// and an error wrapping ErrStoreRead for corrupt or unreadable data. Backend faults
	// (unreachable server, ctx cancellation) are returned without ErrStoreRead.
	Read(ctx context.Context) (*Session, error)

	// Write persists s, replacing any previous copy. Failures wrap ErrStoreWrite.
	Write(ctx context.Context, s *Session) error
}

// encodeSession renders the on-disk form: 4-space indented JSON with a trailing newline.
func encodeSession(s *Session) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil session", ErrStoreWrite)
	}
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("%w: marshal: %v", ErrStoreWrite, err)
	}
	return append(data, '\n'), nil
}

func decodeSession(data []byte, where string) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrStoreRead, where, err)
	}
	return &s, nil
}
