package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultSessionFileName is the file name used under the keeper config directory.
const DefaultSessionFileName = "session.json"

// FileStore persists the session as a JSON document at a fixed path.
type FileStore struct {
	path string
}

// NewFileStore returns a store that reads and writes path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file the store reads and writes.
func (s *FileStore) Path() string { return s.path }

// DefaultSessionPath returns $XDG_CONFIG_HOME/keeper/session.json,
// falling back to ~/.config/keeper/session.json.
func DefaultSessionPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "keeper-"+DefaultSessionFileName)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "keeper", DefaultSessionFileName)
}

// Read loads the session file. A missing file is reported as (nil, nil).
func (s *FileStore) Read(ctx context.Context) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrStoreRead, s.path, err)
	}

	return decodeSession(data, s.path)
}

// Write replaces the session file atomically. The directory is created with mode 0700
// and the file is left with mode 0600 since it carries credentials.
func (s *FileStore) Write(ctx context.Context, sess *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeSession(sess)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrStoreWrite, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: writing %s: %v", ErrStoreWrite, tmpName, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: replacing %s: %v", ErrStoreWrite, s.path, err)
	}
	return nil
}
