package session

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"time"
)

// Cookie is one credential artifact captured from the remote service.
type Cookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain,omitempty"`
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitzero"`
	Secure   bool      `json:"secure,omitempty"`
	HTTPOnly bool      `json:"httpOnly,omitempty"`
}

// UnmarshalJSON also accepts browser-style cookie dumps where "expires" is Unix
// seconds; zero or negative marks a session cookie.
func (c *Cookie) UnmarshalJSON(data []byte) error {
	type plain Cookie
	var raw struct {
		plain
		Expires json.RawMessage `json:"expires"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Cookie(raw.plain)
	c.Expires = time.Time{}

	exp := raw.Expires
	if len(exp) == 0 || string(exp) == "null" {
		return nil
	}
	if exp[0] == '"' {
		return json.Unmarshal(exp, &c.Expires)
	}
	secs, err := strconv.ParseFloat(string(exp), 64)
	if err != nil {
		return fmt.Errorf("cookie %q: expires: %w", c.Name, err)
	}
	if secs > 0 {
		whole := int64(secs)
		c.Expires = time.Unix(whole, int64((secs-float64(whole))*1e9)).UTC()
	}
	return nil
}

// Expired reports whether the cookie has an expiry at or before now.
// A zero Expires is a browser-session cookie and never expires here.
func (c Cookie) Expired(now time.Time) bool {
	if c.Expires.IsZero() {
		return false
	}
	return !c.Expires.After(now)
}

// Session is the authenticated state captured after a login.
//
// A Session is treated as immutable once it leaves the login procedure or a store:
// the Resolver replaces it wholesale and never edits cookies in place.
type Session struct {
	ID        string
	CreatedAt time.Time
	Cookies   []Cookie

	// extra holds top-level fields this package does not interpret.
	extra map[string]json.RawMessage
}

// Cookie returns the first cookie with the given name.
func (s *Session) Cookie(name string) (Cookie, bool) {
	if s == nil {
		return Cookie{}, false
	}
	for _, c := range s.Cookies {
		if c.Name == name {
			return c, true
		}
	}
	return Cookie{}, false
}

// CookieNames lists cookie names in order. Values are left out on purpose so callers can log it.
func (s *Session) CookieNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		names = append(names, c.Name)
	}
	return names
}

type sessionJSON struct {
	ID        string    `json:"id,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	Cookies   []Cookie  `json:"cookies"`
}

var knownSessionFields = map[string]struct{}{
	"id":        {},
	"createdAt": {},
	"cookies":   {},
}

// MarshalJSON writes the known fields and re-emits any opaque fields read earlier.
func (s Session) MarshalJSON() ([]byte, error) {
	cookies := s.Cookies
	if cookies == nil {
		cookies = []Cookie{}
	}

	known, err := json.Marshal(sessionJSON{ID: s.ID, CreatedAt: s.CreatedAt, Cookies: cookies})
	if err != nil {
		return nil, err
	}
	if len(s.extra) == 0 {
		return known, nil
	}

	merged := make(map[string]json.RawMessage, len(s.extra)+len(knownSessionFields))
	for k, v := range s.extra {
		merged[k] = v
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// UnmarshalJSON decodes the known fields and keeps the rest verbatim.
func (s *Session) UnmarshalJSON(data []byte) error {
	var known sessionJSON
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	var extra map[string]json.RawMessage
	for k, v := range all {
		if _, ok := knownSessionFields[k]; ok {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = v
	}

	*s = Session{
		ID:        known.ID,
		CreatedAt: known.CreatedAt,
		Cookies:   known.Cookies,
		extra:     extra,
	}
	return nil
}

// ExtraKeys lists the opaque top-level fields preserved from a decoded document, sorted.
func (s *Session) ExtraKeys() []string {
	if s == nil || len(s.extra) == 0 {
		return nil
	}
	keys := make([]string, 0, len(s.extra))
	for k := range s.extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// clone returns a deep copy so the held session never escapes the Resolver.
func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	cp := &Session{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Cookies:   slices.Clone(s.Cookies),
	}
	if s.extra != nil {
		cp.extra = make(map[string]json.RawMessage, len(s.extra))
		for k, v := range s.extra {
			cp.extra[k] = slices.Clone(v)
		}
	}
	return cp
}
