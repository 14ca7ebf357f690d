// Package logging builds the leveled logger shared by the feed core. The
// terminal belongs to the UI, so log output goes to a file under the
// configured log directory.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// FileName is the name of the client log inside the log directory.
const FileName = "headlines.log"

// Options controls New.
type Options struct {
	// Dir receives FileName. Ignored when Writer is set.
	Dir string
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Writer overrides the log file, mainly for tests.
	Writer io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger and the closer for its output. The caller closes it on
// shutdown.
func New(opts Options) (*log.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		out    io.Writer = opts.Writer
		closer io.Closer = nopCloser{}
	)
	if out == nil {
		if strings.TrimSpace(opts.Dir) == "" {
			return nil, nil, fmt.Errorf("log directory is empty")
		}
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		path := filepath.Join(opts.Dir, FileName)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = file
		closer = file
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
	})
	return logger, closer, nil
}

// ParseLevel maps a config level name to a log level. Empty means info.
func ParseLevel(value string) (log.Level, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return log.InfoLevel, nil
	}
	level, err := log.ParseLevel(value)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("parse log level %q: %w", value, err)
	}
	return level, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// Named returns l with prefix, or a discarding logger when l is nil.
func Named(l *log.Logger, prefix string) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l.WithPrefix(prefix)
}
