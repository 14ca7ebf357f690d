package feed

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	defaultOrigin = "http://localhost:8000"
	snapshotPath  = "/news"
	streamPath    = "/ws/news"
)

// Endpoints holds the two URLs the client talks to.
type Endpoints struct {
	Snapshot string // http(s)://host/news
	Stream   string // ws(s)://host/ws/news
}

// ResolveEndpoints derives the snapshot and stream URLs. The base override wins
// when set; otherwise origin is used, and an empty origin falls back to
// http://localhost:8000. Secure origins (https, wss) map to wss, everything
// else to ws. Any path on the base is kept as a prefix.
func ResolveEndpoints(origin, baseOverride string) (Endpoints, error) {
	raw := strings.TrimSpace(baseOverride)
	if raw == "" {
		raw = strings.TrimSpace(origin)
	}
	if raw == "" {
		raw = defaultOrigin
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	base, err := url.Parse(raw)
	if err != nil {
		return Endpoints{}, fmt.Errorf("parse origin %q: %w", raw, err)
	}
	if base.Host == "" {
		return Endpoints{}, fmt.Errorf("origin %q has no host", raw)
	}

	var httpScheme, wsScheme string
	switch strings.ToLower(base.Scheme) {
	case "https", "wss":
		httpScheme, wsScheme = "https", "wss"
	case "http", "ws":
		httpScheme, wsScheme = "http", "ws"
	default:
		return Endpoints{}, fmt.Errorf("origin %q: unsupported scheme %q", raw, base.Scheme)
	}

	prefix := strings.TrimRight(base.Path, "/")
	snapshot := url.URL{Scheme: httpScheme, Host: base.Host, Path: prefix + snapshotPath}
	stream := url.URL{Scheme: wsScheme, Host: base.Host, Path: prefix + streamPath}
	return Endpoints{Snapshot: snapshot.String(), Stream: stream.String()}, nil
}
