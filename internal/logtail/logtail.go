package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one line of the client log split into its parts.
type Entry struct {
	Time    string
	Level   string
	Prefix  string
	Message string
}

var levels = map[string]string{
	"DEBU":  "DEBUG",
	"DEBUG": "DEBUG",
	"INFO":  "INFO",
	"WARN":  "WARN",
	"ERRO":  "ERROR",
	"ERROR": "ERROR",
	"FATA":  "FATAL",
	"FATAL": "FATAL",
}

// Parse splits a line written by the client logger
// ("<time> <LEVEL> <prefix>: <message> key=value ..."). Lines that do not
// match come back with only Message set.
func Parse(line string) Entry {
	fields := strings.SplitN(strings.TrimRight(line, " "), " ", 3)
	if len(fields) < 2 {
		return Entry{Message: line}
	}
	level, ok := levels[fields[1]]
	if !ok {
		return Entry{Message: line}
	}
	entry := Entry{Time: fields[0], Level: level}
	if len(fields) < 3 {
		return entry
	}
	rest := fields[2]
	if head, tail, found := strings.Cut(rest, " "); found && strings.HasSuffix(head, ":") {
		entry.Prefix = strings.TrimSuffix(head, ":")
		rest = tail
	} else if !found && strings.HasSuffix(rest, ":") {
		entry.Prefix = strings.TrimSuffix(rest, ":")
		rest = ""
	}
	entry.Message = rest
	return entry
}

// ParseLines applies Parse to every line.
func ParseLines(lines []string) []Entry {
	out := make([]Entry, 0, len(lines))
	for _, line := range lines {
		out = append(out, Parse(line))
	}
	return out
}
