// Package config loads the headlines client configuration.
//
// # Resolution
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/headlines/config.toml
//  3. If the file doesn't exist, use Default
//  4. Blank strings and non-positive numbers fall back to their defaults
//
// # TOML Format
//
//	origin = "http://localhost:8000"   # stands in for the page location
//	base_url = ""                      # overrides origin for both endpoints
//	max_items = 200
//	poll_interval_ms = 10000
//	ping_interval_ms = 20000
//	request_timeout_ms = 5000
//	log_dir = "~/.local/share/headlines/logs"
//	log_level = "info"
//	metrics_addr = ""                  # e.g. "127.0.0.1:9464"; empty disables
//
// Every field is optional. Tilde expansion is applied to log_dir.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, and TOML parse errors. A missing file is not an error.
package config
