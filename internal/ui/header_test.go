package ui

import (
	"errors"
	"testing"
	"time"
)

func TestFormatUpdated(t *testing.T) {
	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.Local)
	cases := []struct {
		name    string
		updated time.Time
		want    string
	}{
		{"never", time.Time{}, ""},
		{"recent", now.Add(-20 * time.Second), "14:59:40 (now)"},
		{"minutes", now.Add(-7 * time.Minute), "14:53:00 (7m ago)"},
		{"hours", now.Add(-2 * time.Hour), "13:00:00 (2h ago)"},
		{"old", now.Add(-48 * time.Hour), "15:00:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatUpdated(tc.updated, now); got != tc.want {
				t.Fatalf("formatUpdated = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClassifyConnectionError(t *testing.T) {
	cases := map[string]string{
		"dial tcp 127.0.0.1:8000: connect: connection refused": "OFFLINE",
		"dial tcp: lookup feed.invalid: no such host":           "HOST NOT FOUND",
		"context deadline exceeded":                             "TIMEOUT",
		"snapshot http://x/news returned status 500":            "ERROR",
	}
	for msg, want := range cases {
		if got := classifyConnectionError(errors.New(msg)); got != want {
			t.Errorf("classify(%q) = %q, want %q", msg, got, want)
		}
	}
	if got := classifyConnectionError(nil); got != "" {
		t.Fatalf("classify(nil) = %q", got)
	}
}
