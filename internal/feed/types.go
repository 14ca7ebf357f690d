package feed

import (
	"errors"
	"strings"
	"time"
)

// Sentiment is the publisher-assigned tone of a headline. The zero value means
// the feed did not send one; it is kept as-is so the store never invents data.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// FeedItem mirrors one headline as delivered by /news and /ws/news.
type FeedItem struct {
	ID        string    `json:"id"`
	Headline  string    `json:"headline"`
	Source    string    `json:"source"`
	Timestamp string    `json:"ts"`
	Summary   string    `json:"summary,omitempty"`
	Sentiment Sentiment `json:"sentiment,omitempty"`
	Tickers   []string  `json:"tickers,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	URL       string    `json:"url,omitempty"`
}

var (
	errMissingID       = errors.New("missing id")
	errMissingHeadline = errors.New("missing headline")
	errMissingSource   = errors.New("missing source")
)

// Validate reports whether the item carries the fields every consumer relies on.
func (i FeedItem) Validate() error {
	switch {
	case strings.TrimSpace(i.ID) == "":
		return errMissingID
	case strings.TrimSpace(i.Headline) == "":
		return errMissingHeadline
	case strings.TrimSpace(i.Source) == "":
		return errMissingSource
	}
	return nil
}

// Published returns the publication time, or the zero time when the feed sent
// an empty or unparseable timestamp.
func (i FeedItem) Published() time.Time {
	return parseTime(i.Timestamp)
}

// EffectiveSentiment treats a missing sentiment as neutral.
func (i FeedItem) EffectiveSentiment() Sentiment {
	if i.Sentiment == "" {
		return SentimentNeutral
	}
	return i.Sentiment
}

// IsAlert reports whether the item names at least one ticker and carries a
// non-neutral tone.
func (i FeedItem) IsAlert() bool {
	return len(i.Tickers) > 0 && i.EffectiveSentiment() != SentimentNeutral
}

// Clone returns a copy that shares no slices with i.
func (i FeedItem) Clone() FeedItem {
	dup := i
	dup.Tickers = cloneStrings(i.Tickers)
	dup.Tags = cloneStrings(i.Tags)
	return dup
}

// CloneItems deep-copies a slice of items.
func CloneItems(items []FeedItem) []FeedItem {
	if len(items) == 0 {
		return nil
	}
	dup := make([]FeedItem, len(items))
	for idx, item := range items {
		dup[idx] = item.Clone()
	}
	return dup
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	dup := make([]string, len(values))
	copy(dup, values)
	return dup
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
