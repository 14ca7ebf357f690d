// Package ui provides the terminal interface for headlines, built on Bubble Tea.
//
// The interface is read-only. On every refresh tick the model pulls one
// feedsync.View from the controller and redraws:
//
//   - Header: connection state badge, poller indicator, item and sentiment
//     counts, time of the last store change, and the last error
//   - Feed view: the synchronized headlines, newest first, beside a detail
//     pane for the selected one
//   - Log view: a tail of the client's own log file
//
// Search ("/") and the alerts-only toggle ("a") narrow what is shown without
// changing order. The theme ("T") and the alerts toggle are persisted through
// the prefs package.
//
// Usage:
//
//	err := ui.Run(ctx, ui.Options{
//		Feed:      controller,
//		LogPath:   cfg.LogPath(),
//		ThemeName: p.Theme,
//		PrefsPath: prefsPath,
//	})
package ui
