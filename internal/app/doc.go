// Package app is the composition root for headlines.
//
// Run loads the config file and applies command-line overrides, opens the
// client log, resolves the snapshot and stream endpoints, and starts the
// feedsync controller. The TUI and the optional Prometheus endpoint then run
// in one errgroup; quitting the UI or cancelling the context stops both and
// shuts the controller down.
//
//	Run()
//	  ├─> config.Load()         settings and overrides
//	  ├─> logging.New()         file logger
//	  ├─> feed.NewClient()      GET /news
//	  ├─> feedsync.New().Start  snapshot, stream, fallback poller
//	  ├─> ui.Run()              blocks until quit
//	  └─> metrics server        only when metrics_addr is set
//
// Fatal errors are limited to startup: an unreadable config, a log directory
// that cannot be created, or an origin that does not parse. Everything after
// startup (failed fetches, dropped connections) is logged and retried by the
// controller.
package app
