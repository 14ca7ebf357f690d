package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutExtraWideWidth is the threshold for extra-wide layouts.
	LayoutExtraWideWidth = 160
)

// Log display limits.
const (
	// LogBufferLimit is the maximum number of client log lines kept in memory.
	LogBufferLimit = 2000
)

// DefaultUIInterval is the default UI refresh interval.
const DefaultUIInterval = time.Second

// Column widths in the headline list.
const (
	ageColumnWidth    = 4
	sourceColumnWidth = 12
)
