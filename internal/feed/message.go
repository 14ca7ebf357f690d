package feed

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed marks payloads that are not shaped like the feed protocol.
var ErrMalformed = errors.New("malformed payload")

// Kind discriminates decoded stream frames.
type Kind string

const (
	KindInit    Kind = "init"
	KindBatch   Kind = "batch"
	KindPong    Kind = "pong"
	KindUnknown Kind = "unknown"
)

// Message is one decoded frame from /ws/news. The set of implementations is
// closed: InitMessage, BatchMessage, PongMessage and UnknownMessage.
type Message interface {
	Kind() Kind
}

// InitMessage carries the server's current item set, sent after connecting.
type InitMessage struct {
	Items   []FeedItem
	Dropped int // items discarded by validation
}

// BatchMessage carries items the server considers new.
type BatchMessage struct {
	Items   []FeedItem
	Dropped int
}

// PongMessage answers a keepalive ping.
type PongMessage struct{}

// UnknownMessage is a well-formed frame whose type this client does not handle.
type UnknownMessage struct {
	Type string
}

func (InitMessage) Kind() Kind    { return KindInit }
func (BatchMessage) Kind() Kind   { return KindBatch }
func (PongMessage) Kind() Kind    { return KindPong }
func (UnknownMessage) Kind() Kind { return KindUnknown }

type envelope struct {
	Type  *string         `json:"type"`
	Items json.RawMessage `json:"items"`
}

// DecodeMessage parses a text frame. Frames that are not JSON objects with a
// string "type" field, or whose items are not a list of objects, return an
// error wrapping ErrMalformed.
func DecodeMessage(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode frame: %w: %v", ErrMalformed, err)
	}
	if env.Type == nil {
		return nil, fmt.Errorf("decode frame: %w: missing type", ErrMalformed)
	}

	switch *env.Type {
	case "init", "snapshot":
		items, dropped, err := decodeItems(env.Items)
		if err != nil {
			return nil, fmt.Errorf("decode %s frame: %w", *env.Type, err)
		}
		return InitMessage{Items: items, Dropped: dropped}, nil
	case "batch":
		items, dropped, err := decodeItems(env.Items)
		if err != nil {
			return nil, fmt.Errorf("decode batch frame: %w", err)
		}
		return BatchMessage{Items: items, Dropped: dropped}, nil
	case "pong":
		return PongMessage{}, nil
	default:
		return UnknownMessage{Type: *env.Type}, nil
	}
}

// decodeItems accepts an absent or null list as empty.
func decodeItems(raw json.RawMessage) ([]FeedItem, int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, 0, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, 0, fmt.Errorf("%w: items is not a list", ErrMalformed)
	}
	return decodeElements(elems)
}

func decodeElements(elems []json.RawMessage) ([]FeedItem, int, error) {
	items := make([]FeedItem, 0, len(elems))
	dropped := 0
	for idx, elem := range elems {
		var item FeedItem
		if err := json.Unmarshal(elem, &item); err != nil {
			return nil, 0, fmt.Errorf("%w: item %d: %v", ErrMalformed, idx, err)
		}
		if item.Validate() != nil {
			dropped++
			continue
		}
		items = append(items, item)
	}
	return items, dropped, nil
}

var pingFrame = []byte(`{"type":"ping"}`)

// PingFrame returns the keepalive frame sent while the stream is open.
func PingFrame() []byte {
	dup := make([]byte, len(pingFrame))
	copy(dup, pingFrame)
	return dup
}
