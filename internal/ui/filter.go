package ui

import (
	"strings"

	"github.com/five82/headlines/internal/feed"
)

// itemFilter narrows the synchronized items for display. It never changes
// order.
type itemFilter struct {
	query      string
	alertsOnly bool
}

func (f itemFilter) active() bool {
	return f.alertsOnly || strings.TrimSpace(f.query) != ""
}

func (f itemFilter) apply(items []feed.FeedItem) []feed.FeedItem {
	if !f.active() {
		return items
	}
	query := strings.ToLower(strings.TrimSpace(f.query))
	out := make([]feed.FeedItem, 0, len(items))
	for _, item := range items {
		if f.alertsOnly && !item.IsAlert() {
			continue
		}
		if query != "" && !matchesQuery(item, query) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// matchesQuery reports whether a lower-cased query occurs in the headline,
// summary, source or any ticker.
func matchesQuery(item feed.FeedItem, query string) bool {
	if strings.Contains(strings.ToLower(item.Headline), query) ||
		strings.Contains(strings.ToLower(item.Summary), query) ||
		strings.Contains(strings.ToLower(item.Source), query) {
		return true
	}
	for _, ticker := range item.Tickers {
		if strings.Contains(strings.ToLower(ticker), query) {
			return true
		}
	}
	return false
}

// feedCounts summarizes items for the header.
type feedCounts struct {
	total    int
	positive int
	negative int
	sources  int
	alerts   int
}

func countItems(items []feed.FeedItem) feedCounts {
	c := feedCounts{total: len(items)}
	sources := make(map[string]struct{})
	for _, item := range items {
		switch item.EffectiveSentiment() {
		case feed.SentimentPositive:
			c.positive++
		case feed.SentimentNegative:
			c.negative++
		}
		if item.IsAlert() {
			c.alerts++
		}
		sources[item.Source] = struct{}{}
	}
	c.sources = len(sources)
	return c
}
