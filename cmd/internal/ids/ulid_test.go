package ids

import (
	"testing"
	"time"
)

func TestNewULID_EncodesTime(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	id, err := NewULID(now)
	if err != nil {
		t.Fatalf("NewULID: %v", err)
	}
	if len(id) != 26 {
		t.Fatalf("len(id)=%d want 26", len(id))
	}

	got, err := Time(id)
	if err != nil {
		t.Fatalf("Time: %v", err)
	}
	if !got.Equal(now) {
		t.Fatalf("Time(id)=%v want %v", got, now)
	}
}

func TestNewULID_ZeroTimeUsesNow(t *testing.T) {
	t.Parallel()

	before := time.Now().Add(-time.Second)
	id, err := NewULID(time.Time{})
	if err != nil {
		t.Fatalf("NewULID: %v", err)
	}
	got, err := Time(id)
	if err != nil {
		t.Fatalf("Time: %v", err)
	}
	if got.Before(before) {
		t.Fatalf("expected current timestamp, got %v", got)
	}
}

func TestTime_RejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := Time("not-a-ulid"); err == nil {
		t.Fatalf("expected error for invalid ulid")
	}
}
