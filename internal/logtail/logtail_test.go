package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "read all (0)", maxLines: 0, expected: expectedAll},
		{name: "read all (negative)", maxLines: -1, expected: expectedAll},
		{name: "read partial (5)", maxLines: 5, expected: expectedAll[5:]},
		{name: "read exactly all (10)", maxLines: 10, expected: expectedAll},
		{name: "read more than exists (20)", maxLines: 20, expected: expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v; want nil, nil", got, err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Entry
	}{
		{
			name:  "prefixed entry with fields",
			input: "2026-01-02T09:30:00Z INFO stream: stream open session=5f1c",
			want:  Entry{Time: "2026-01-02T09:30:00Z", Level: "INFO", Prefix: "stream", Message: "stream open session=5f1c"},
		},
		{
			name:  "short level names",
			input: "2026-01-02T09:30:00Z ERRO poller: poll failed error=\"status 503\"",
			want:  Entry{Time: "2026-01-02T09:30:00Z", Level: "ERROR", Prefix: "poller", Message: "poll failed error=\"status 503\""},
		},
		{
			name:  "no prefix",
			input: "2026-01-02T09:30:00Z DEBU merged items accepted=3",
			want:  Entry{Time: "2026-01-02T09:30:00Z", Level: "DEBUG", Message: "merged items accepted=3"},
		},
		{
			name:  "not a log line",
			input: "panic: something odd",
			want:  Entry{Message: "panic: something odd"},
		},
		{
			name:  "empty",
			input: "",
			want:  Entry{Message: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.input); got != tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseLines(t *testing.T) {
	got := ParseLines([]string{"2026-01-02T09:30:00Z WARN sync: initial snapshot failed", "loose"})
	if len(got) != 2 || got[0].Level != "WARN" || got[0].Prefix != "sync" || got[1].Message != "loose" {
		t.Fatalf("ParseLines() = %+v", got)
	}
}
