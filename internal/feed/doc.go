// Package feed defines the headline data model and the wire protocol spoken by
// the feed origin.
//
// # Overview
//
// The origin exposes two endpoints:
//
//   - GET <base>/news returns a JSON array of items (the snapshot)
//   - <ws|wss>://<host>/ws/news streams JSON frames
//
// ResolveEndpoints derives both URLs from a single origin. Client fetches the
// snapshot; DecodeMessage turns stream frames into a closed set of variants
// (InitMessage, BatchMessage, PongMessage, UnknownMessage) so loosely shaped
// JSON never travels past this package.
//
// # Stream Frames
//
//	{"type": "init",  "items": [...]}   current item set, sent on connect
//	{"type": "batch", "items": [...]}   new items
//	{"type": "pong"}                    keepalive answer
//	{"type": "ping"}                    outbound keepalive (PingFrame)
//
// "snapshot" is accepted as an alias of "init". Frames with any other type
// decode to UnknownMessage and are ignored by the stream.
//
// # Validation
//
// Items without an id, headline or source are dropped while decoding; the
// surrounding frame or snapshot is still accepted. Structural problems (not a
// JSON object, items not a list, a non-object element) fail the whole payload
// with an error wrapping ErrMalformed.
//
// Optional fields are kept exactly as received. In particular a missing
// sentiment stays empty; EffectiveSentiment is the presentation-side view that
// reads it as neutral.
package feed
