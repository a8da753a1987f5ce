package app

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"keeper/cmd/internal/auth/session"
	"keeper/cmd/internal/ids"
)

func TestDescribeSession(t *testing.T) {
	t.Parallel()

	loginAt := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	id, err := ids.NewULID(loginAt)
	if err != nil {
		t.Fatalf("NewULID: %v", err)
	}

	doc := `{"id":"` + id + `","cookies":[{"name":"sid","value":"secret-sid"}],"userAgent":"x","origins":[]}`
	var s session.Session
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	view := describeSession(&s)
	if !view.CreatedAt.Equal(loginAt) {
		t.Fatalf("createdAt=%v want %v from the id", view.CreatedAt, loginAt)
	}
	if strings.Join(view.Extra, ",") != "origins,userAgent" {
		t.Fatalf("extra=%v", view.Extra)
	}

	out, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(out), "secret-sid") {
		t.Fatalf("cookie value leaked: %s", out)
	}
}

func TestDescribeSession_KeepsCreatedAt(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	view := describeSession(&session.Session{ID: "not-a-ulid", CreatedAt: at})
	if !view.CreatedAt.Equal(at) || len(view.Cookies) != 0 || view.Extra != nil {
		t.Fatalf("unexpected view: %+v", view)
	}
}
