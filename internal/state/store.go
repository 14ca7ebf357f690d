package state

import (
	"github.com/five82/headlines/internal/feed"
)

// DefaultMaxItems bounds the store when no capacity is configured.
const DefaultMaxItems = 200

// MergeResult describes what a Merge or Replace changed.
type MergeResult struct {
	// Accepted holds the items that entered the store, newest first.
	Accepted []feed.FeedItem
	// Evicted holds previously stored items pushed out by the capacity bound,
	// in their stored order.
	Evicted []feed.FeedItem
	// Duplicates counts incoming items skipped because their id was known.
	Duplicates int
}

// Store is a bounded, de-duplicated, newest-first list of feed items. It does
// no locking: the sync controller serializes every call. The zero value is an
// empty store with DefaultMaxItems capacity.
type Store struct {
	max   int
	items []feed.FeedItem
	ids   map[string]struct{}
}

// NewStore returns an empty store holding at most maxItems items. A
// non-positive maxItems selects DefaultMaxItems.
func NewStore(maxItems int) *Store {
	return &Store{max: maxItems}
}

// Cap returns the capacity bound.
func (s *Store) Cap() int {
	if s.max <= 0 {
		return DefaultMaxItems
	}
	return s.max
}

// Len returns the number of stored items.
func (s *Store) Len() int {
	return len(s.items)
}

// Contains reports whether an item with id is stored.
func (s *Store) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Items returns a deep copy of the stored items, newest first. Later merges
// never alter a slice returned earlier.
func (s *Store) Items() []feed.FeedItem {
	return feed.CloneItems(s.items)
}

// Merge places the incoming items whose ids are not yet stored in front of the
// existing items, keeping their delivery order, then trims the oldest entries
// beyond capacity. Previously stored items never move relative to each other,
// so merging the same batch twice is a no-op the second time.
func (s *Store) Merge(incoming []feed.FeedItem) MergeResult {
	s.ensureIndex()

	var result MergeResult
	seen := make(map[string]struct{}, len(incoming))
	accepted := make([]feed.FeedItem, 0, len(incoming))
	for _, item := range incoming {
		if item.ID == "" {
			continue
		}
		if _, ok := s.ids[item.ID]; ok {
			result.Duplicates++
			continue
		}
		if _, ok := seen[item.ID]; ok {
			result.Duplicates++
			continue
		}
		seen[item.ID] = struct{}{}
		accepted = append(accepted, item.Clone())
	}
	if len(accepted) == 0 {
		return result
	}

	limit := s.Cap()
	if len(accepted) > limit {
		// The incoming list alone overflows the store; its oldest tail never lands.
		accepted = accepted[:limit]
	}
	keep := limit - len(accepted)
	if keep > len(s.items) {
		keep = len(s.items)
	}

	merged := make([]feed.FeedItem, 0, len(accepted)+keep)
	merged = append(merged, accepted...)
	merged = append(merged, s.items[:keep]...)

	result.Evicted = s.items[keep:]
	for _, item := range result.Evicted {
		delete(s.ids, item.ID)
	}
	for _, item := range accepted {
		s.ids[item.ID] = struct{}{}
	}
	s.items = merged

	result.Accepted = feed.CloneItems(accepted)
	result.Evicted = feed.CloneItems(result.Evicted)
	return result
}

// Replace discards the current contents and loads items in order, keeping the
// first occurrence of each id and at most Cap items.
func (s *Store) Replace(items []feed.FeedItem) MergeResult {
	s.items = nil
	s.ids = nil
	return s.Merge(items)
}

func (s *Store) ensureIndex() {
	if s.ids == nil {
		s.ids = make(map[string]struct{}, len(s.items))
		for _, item := range s.items {
			s.ids[item.ID] = struct{}{}
		}
	}
}
