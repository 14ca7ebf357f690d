package feed

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name      string
		frame     string
		wantKind  Kind
		wantIDs   []string
		wantDrops int
	}{
		{
			name:     "init",
			frame:    `{"type":"init","items":[{"id":"a","headline":"A","source":"S"},{"id":"b","headline":"B","source":"S"}]}`,
			wantKind: KindInit,
			wantIDs:  []string{"a", "b"},
		},
		{
			name:     "snapshot alias",
			frame:    `{"type":"snapshot","items":[{"id":"a","headline":"A","source":"S"}]}`,
			wantKind: KindInit,
			wantIDs:  []string{"a"},
		},
		{
			name:      "batch drops invalid items",
			frame:     `{"type":"batch","items":[{"id":"c","headline":"C","source":"S"},{"headline":"no id","source":"S"},null]}`,
			wantKind:  KindBatch,
			wantIDs:   []string{"c"},
			wantDrops: 2,
		},
		{
			name:     "batch without items",
			frame:    `{"type":"batch"}`,
			wantKind: KindBatch,
		},
		{
			name:     "pong",
			frame:    `{"type":"pong"}`,
			wantKind: KindPong,
		},
		{
			name:     "unknown type",
			frame:    `{"type":"heartbeat","items":[]}`,
			wantKind: KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeMessage([]byte(tt.frame))
			if err != nil {
				t.Fatalf("DecodeMessage returned error: %v", err)
			}
			if msg.Kind() != tt.wantKind {
				t.Fatalf("Kind() = %q, want %q", msg.Kind(), tt.wantKind)
			}
			var items []FeedItem
			var dropped int
			switch m := msg.(type) {
			case InitMessage:
				items, dropped = m.Items, m.Dropped
			case BatchMessage:
				items, dropped = m.Items, m.Dropped
			}
			if len(items) != len(tt.wantIDs) {
				t.Fatalf("items = %#v, want ids %v", items, tt.wantIDs)
			}
			for i, id := range tt.wantIDs {
				if items[i].ID != id {
					t.Fatalf("items[%d].ID = %q, want %q", i, items[i].ID, id)
				}
			}
			if dropped != tt.wantDrops {
				t.Fatalf("Dropped = %d, want %d", dropped, tt.wantDrops)
			}
		})
	}
}

func TestDecodeMessage_Malformed(t *testing.T) {
	frames := []string{
		`not json`,
		`[1,2,3]`,
		`{"items":[]}`,
		`{"type":42}`,
		`{"type":"batch","items":{"id":"a"}}`,
		`{"type":"init","items":[{"id":"a","headline":"A","source":"S","tickers":"CL"}]}`,
		`{"type":"batch","items":[7]}`,
	}
	for _, frame := range frames {
		msg, err := DecodeMessage([]byte(frame))
		if err == nil {
			t.Fatalf("DecodeMessage(%s) = %#v, want error", frame, msg)
		}
		if !errors.Is(err, ErrMalformed) {
			t.Fatalf("DecodeMessage(%s) error = %v, want ErrMalformed", frame, err)
		}
	}
}

func TestDecodeMessage_KeepsOptionalFieldsVerbatim(t *testing.T) {
	frame := `{"type":"batch","items":[{"id":"a","headline":"A","source":"S","ts":"2025-01-02T03:04:05Z","sentiment":"bullish","tickers":["CL"],"tags":["energy"],"url":"https://x"}]}`
	msg, err := DecodeMessage([]byte(frame))
	if err != nil {
		t.Fatalf("DecodeMessage returned error: %v", err)
	}
	item := msg.(BatchMessage).Items[0]
	if item.Sentiment != "bullish" {
		t.Fatalf("Sentiment = %q, want verbatim %q", item.Sentiment, "bullish")
	}
	if item.Timestamp != "2025-01-02T03:04:05Z" || item.URL != "https://x" {
		t.Fatalf("item = %#v, want ts and url preserved", item)
	}
	if len(item.Tickers) != 1 || item.Tickers[0] != "CL" || len(item.Tags) != 1 {
		t.Fatalf("item = %#v, want tickers and tags preserved", item)
	}
}

func TestPingFrame(t *testing.T) {
	var payload map[string]string
	if err := json.Unmarshal(PingFrame(), &payload); err != nil {
		t.Fatalf("PingFrame is not JSON: %v", err)
	}
	if payload["type"] != "ping" {
		t.Fatalf("PingFrame type = %q, want ping", payload["type"])
	}
	frame := PingFrame()
	frame[0] = 'x'
	if PingFrame()[0] != '{' {
		t.Fatalf("PingFrame should return a fresh copy")
	}
}
