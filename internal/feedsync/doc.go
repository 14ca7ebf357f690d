// Package feedsync keeps the in-memory headline store synchronized with the
// feed server.
//
// # Overview
//
// Controller ties three sources into one state.Store:
//
//   - an initial snapshot, fetched once per Start
//   - the live stream (stream.Connection), which pushes init and batch frames
//   - a fallback Poller, which refetches the snapshot while the stream is down
//
// Every source goes through the same merge, so the store stays bounded, free of
// duplicate ids, and newest first no matter how deliveries interleave.
//
// # Failover
//
// The Poller follows the connection state. It starts when the connection
// reaches closed and stops the moment it reaches open:
//
//	open ──▶ closed ──▶ connecting ──▶ open
//	          │ poller active ────────▶│ poller stopped
//
// # Concurrency
//
// A single sched.Serial guards the store, the connection, the poller and the
// controller's own bookkeeping. Transport events, timer callbacks and fetch
// completions all enter through it. Fetches and dials run outside the lock.
// Stop bumps a generation counter, so callbacks that were already queued see a
// stale generation and return without touching anything.
//
// # Reads
//
// CurrentItems, ConnectionStatus and Snapshot return copies. A slice handed to
// the UI is never modified by later merges.
package feedsync
