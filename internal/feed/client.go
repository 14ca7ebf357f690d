package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// SnapshotFetcher retrieves the feed origin's current item set. *Client
// implements it; tests substitute fakes.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context) ([]FeedItem, error)
}

// Ensure Client implements SnapshotFetcher at compile time.
var _ SnapshotFetcher = (*Client)(nil)

// StatusError reports a non-200 answer from the snapshot endpoint.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("snapshot %s returned status %d", e.URL, e.Code)
}

const (
	defaultUserAgent      = "headlines/0.1"
	defaultRequestTimeout = 5 * time.Second
	maxSnapshotBytes      = 8 << 20
)

// Client talks to the feed origin over HTTP.
type Client struct {
	endpoints Endpoints
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	logger    *log.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLimiter replaces the request limiter. A nil limiter disables limiting.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithLogger sets the logger used for per-item validation drops.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient builds a Client for the given endpoints.
func NewClient(endpoints Endpoints, opts ...Option) *Client {
	c := &Client{
		endpoints: endpoints,
		http:      &http.Client{Timeout: defaultRequestTimeout},
		// The startup load and the fallback poller share this budget.
		limiter:   rate.NewLimiter(rate.Every(time.Second), 2),
		userAgent: defaultUserAgent,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoints returns the URLs the client was built with.
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// FetchSnapshot requests GET <base>/news and returns the valid items in the
// order the origin sent them.
func (c *Client) FetchSnapshot(ctx context.Context) ([]FeedItem, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for request slot: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints.Snapshot, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: c.endpoints.Snapshot, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(body, &elems); err != nil {
		return nil, fmt.Errorf("decode response: %w: body is not a list", ErrMalformed)
	}
	if elems == nil {
		// A literal null is not a list.
		return nil, fmt.Errorf("decode response: %w: body is null", ErrMalformed)
	}
	items, dropped, err := decodeElements(elems)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if dropped > 0 {
		c.logger.Debug("dropped invalid snapshot items", "dropped", dropped, "kept", len(items))
	}
	return items, nil
}
