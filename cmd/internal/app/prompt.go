package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// promptCredentials fills in a missing username or password from the terminal.
// Nothing is asked when stdin is not a TTY; FormLogin then reports the missing field.
func promptCredentials(cfg *Config, in *os.File, out io.Writer) error {
	if cfg.Username != "" && cfg.Password != "" {
		return nil
	}
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}

	if cfg.Username == "" {
		fmt.Fprint(out, "username: ")
		line, err := readLine(in)
		if err != nil && line == "" {
			return fmt.Errorf("read username: %w", err)
		}
		cfg.Username = strings.TrimSpace(line)
	}

	if cfg.Password == "" {
		fmt.Fprintf(out, "password for %s: ", cfg.Username)
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		cfg.Password = string(pw)
	}
	return nil
}

// readLine reads up to and including '\n' one byte at a time, so bytes typed ahead
// stay on the fd for term.ReadPassword.
func readLine(r io.Reader) (string, error) {
	var (
		b   strings.Builder
		buf [1]byte
	)
	for {
		n, err := r.Read(buf[:])
		if n == 1 {
			if buf[0] == '\n' {
				return strings.TrimSuffix(b.String(), "\r"), nil
			}
			b.WriteByte(buf[0])
		}
		if err != nil {
			if errors.Is(err, io.EOF) && b.Len() > 0 {
				return b.String(), nil
			}
			return b.String(), err
		}
	}
}
