// Package state holds the bounded headline store shared by the stream and the
// fallback poller.
//
// # Overview
//
// Store keeps at most Cap items, newest first, with no two items sharing an
// id. It is a plain data structure: no I/O, no timers, no locking. The sync
// controller owns the only instance and calls it from its serial executor, so
// a single mutex protects every mutation and read.
//
// # Merge Semantics
//
// Every source (initial snapshot, stream batches, poller snapshots) goes
// through Merge:
//
//	store:    [a b]
//	incoming: [b c]
//	result:   [c a b]   c is new and goes first; b is already known and stays put
//
//  1. Skip incoming items whose id is already stored (or repeated earlier in
//     the same incoming list).
//  2. Prepend the survivors in delivery order.
//  3. Drop the oldest entries beyond Cap.
//
// Merge is not a set union with timestamp ordering: whichever call runs later
// sits in front, regardless of publication time. Replace is only used to load
// the first snapshot into an empty store and applies the same de-duplication
// and bound.
//
// # Copy-on-Read
//
// Items returns a deep copy (tickers and tags included). The UI can hold on to
// a returned slice for as long as it likes; later merges never touch it.
package state
