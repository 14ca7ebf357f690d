package state

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/five82/headlines/internal/feed"
)

func items(ids ...string) []feed.FeedItem {
	out := make([]feed.FeedItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, feed.FeedItem{ID: id, Headline: "headline " + id, Source: "Wire"})
	}
	return out
}

func ids(list []feed.FeedItem) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, item.ID)
	}
	return out
}

func TestStore_SnapshotThenBatchScenario(t *testing.T) {
	var s Store

	s.Replace(items("a", "b"))
	if got := ids(s.Items()); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("after snapshot = %v, want [a b]", got)
	}

	res := s.Merge(items("b", "c"))
	if got := ids(s.Items()); !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Fatalf("after batch = %v, want [c a b]", got)
	}
	if got := ids(res.Accepted); !reflect.DeepEqual(got, []string{"c"}) {
		t.Fatalf("Accepted = %v, want [c]", got)
	}
	if res.Duplicates != 1 {
		t.Fatalf("Duplicates = %d, want 1", res.Duplicates)
	}
}

func TestStore_MergeIsIdempotent(t *testing.T) {
	var once, twice Store
	batch := items("x", "y", "z")

	once.Merge(items("a"))
	once.Merge(batch)

	twice.Merge(items("a"))
	twice.Merge(batch)
	res := twice.Merge(batch)

	if !reflect.DeepEqual(once.Items(), twice.Items()) {
		t.Fatalf("merging twice = %v, once = %v", ids(twice.Items()), ids(once.Items()))
	}
	if len(res.Accepted) != 0 || res.Duplicates != 3 {
		t.Fatalf("second merge result = %+v, want nothing accepted", res)
	}
}

func TestStore_DuplicatesWithinOneBatch(t *testing.T) {
	var s Store
	s.Merge(items("a", "b", "a", "c", "b"))
	if got := ids(s.Items()); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("items = %v, want [a b c]", got)
	}
}

func TestStore_SkipsEmptyIDs(t *testing.T) {
	var s Store
	s.Merge([]feed.FeedItem{{Headline: "no id"}, {ID: "a", Headline: "A", Source: "S"}})
	if got := ids(s.Items()); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("items = %v, want [a]", got)
	}
}

func TestStore_EvictsOldestBeyondCapacity(t *testing.T) {
	var s Store
	for i := 0; i < DefaultMaxItems+1; i++ {
		s.Merge(items(fmt.Sprintf("id-%03d", i)))
	}
	if s.Len() != DefaultMaxItems {
		t.Fatalf("Len() = %d, want %d", s.Len(), DefaultMaxItems)
	}
	got := s.Items()
	if got[0].ID != "id-200" {
		t.Fatalf("newest = %q, want id-200", got[0].ID)
	}
	if got[len(got)-1].ID != "id-001" {
		t.Fatalf("oldest kept = %q, want id-001", got[len(got)-1].ID)
	}
	if s.Contains("id-000") {
		t.Fatalf("id-000 should have been evicted")
	}

	// An evicted id can come back as a new item.
	res := s.Merge(items("id-000"))
	if len(res.Accepted) != 1 || len(res.Evicted) != 1 || res.Evicted[0].ID != "id-001" {
		t.Fatalf("re-merge result = accepted %v evicted %v", ids(res.Accepted), ids(res.Evicted))
	}
}

func TestStore_OversizedBatch(t *testing.T) {
	s := NewStore(3)
	s.Merge(items("old"))
	res := s.Merge(items("a", "b", "c", "d"))
	if got := ids(s.Items()); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("items = %v, want [a b c]", got)
	}
	if got := ids(res.Accepted); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("Accepted = %v, want [a b c]", got)
	}
	if got := ids(res.Evicted); !reflect.DeepEqual(got, []string{"old"}) {
		t.Fatalf("Evicted = %v, want [old]", got)
	}
	if s.Contains("d") || s.Contains("old") {
		t.Fatalf("index out of sync with items")
	}
}

func TestStore_OrderAndBoundHoldAcrossRounds(t *testing.T) {
	s := NewStore(25)
	var history [][]feed.FeedItem

	// Overlapping batches of varying size, including pure re-deliveries.
	for round := 0; round < 40; round++ {
		var batch []string
		for j := 0; j < round%7; j++ {
			batch = append(batch, fmt.Sprintf("n%d", (round*3+j)%60))
		}
		res := s.Merge(items(batch...))
		if s.Len() > s.Cap() {
			t.Fatalf("round %d: Len() = %d exceeds Cap() %d", round, s.Len(), s.Cap())
		}
		history = append(history, res.Accepted)

		seen := map[string]bool{}
		for _, item := range s.Items() {
			if seen[item.ID] {
				t.Fatalf("round %d: duplicate id %q", round, item.ID)
			}
			seen[item.ID] = true
		}
	}

	var rebuilt []string
	for i := len(history) - 1; i >= 0; i-- {
		rebuilt = append(rebuilt, ids(history[i])...)
	}
	// Accepted ids that were later evicted and re-accepted appear twice in the
	// history; only the most recent acceptance counts.
	seen := map[string]bool{}
	var dedup []string
	for _, id := range rebuilt {
		if seen[id] {
			continue
		}
		seen[id] = true
		dedup = append(dedup, id)
	}
	if len(dedup) > s.Cap() {
		dedup = dedup[:s.Cap()]
	}
	if got := ids(s.Items()); !reflect.DeepEqual(got, dedup) {
		t.Fatalf("store order = %v, want %v", got, dedup)
	}
}

func TestStore_ItemsIsCopyOnRead(t *testing.T) {
	var s Store
	s.Merge([]feed.FeedItem{{ID: "a", Headline: "A", Source: "S", Tickers: []string{"CL"}}})

	snap := s.Items()
	snap[0].Headline = "mutated"
	snap[0].Tickers[0] = "XX"

	s.Merge(items("b"))
	again := s.Items()
	if again[1].Headline != "A" || again[1].Tickers[0] != "CL" {
		t.Fatalf("store changed through returned slice: %#v", again[1])
	}
	if len(snap) != 1 || snap[0].ID != "a" {
		t.Fatalf("earlier snapshot changed by later merge: %v", ids(snap))
	}
}

func TestStore_ReplaceDedupsAndBounds(t *testing.T) {
	s := NewStore(2)
	s.Merge(items("z"))
	s.Replace(items("a", "a", "b", "c"))
	if got := ids(s.Items()); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("items = %v, want [a b]", got)
	}
	if s.Contains("z") {
		t.Fatalf("Replace should drop previous contents")
	}
}

func TestStore_ZeroValue(t *testing.T) {
	var s Store
	if s.Len() != 0 || s.Items() != nil || s.Cap() != DefaultMaxItems {
		t.Fatalf("zero Store: Len=%d Items=%v Cap=%d", s.Len(), s.Items(), s.Cap())
	}
	if s.Contains("a") {
		t.Fatalf("zero Store should not contain anything")
	}
}
