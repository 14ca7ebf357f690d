package feedsync

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/five82/headlines/internal/feed"
	"github.com/five82/headlines/internal/logging"
	"github.com/five82/headlines/internal/metrics"
	"github.com/five82/headlines/internal/sched"
	"github.com/five82/headlines/internal/state"
	"github.com/five82/headlines/internal/stream"
)

// Snapshot callers used in logs and metrics.
const (
	callerStartup = "startup"
	callerPoller  = "poller"
)

// Options configures a Controller.
type Options struct {
	// StreamURL is the ws:// or wss:// feed address.
	StreamURL string
	Fetcher   feed.SnapshotFetcher
	Dialer    stream.Dialer
	Scheduler sched.Scheduler

	MaxItems     int
	PollInterval time.Duration
	PingInterval time.Duration
	// NewBackoff builds the reconnect policy. Nil uses stream.DefaultBackoff.
	NewBackoff func() *stream.Backoff

	Logger  *log.Logger
	Metrics *metrics.Metrics
}

// View is a consistent read of everything the presentation layer shows.
type View struct {
	Items        []feed.FeedItem
	Status       stream.State
	UpdatedAt    time.Time
	LastError    error
	PollerActive bool
	Running      bool
}

// Controller owns the item store and keeps it synchronized with the feed. All
// of its state, and that of the connection and poller it drives, is guarded by
// one serial executor.
type Controller struct {
	serial  sched.Serial
	sched   sched.Scheduler
	fetcher feed.SnapshotFetcher
	logger  *log.Logger
	metrics *metrics.Metrics
	maxItem int

	conn   *stream.Connection
	poller *Poller

	running   bool
	gen       uint64
	ctx       context.Context
	cancel    context.CancelFunc
	initial   sched.Timer
	store     *state.Store
	status    stream.State
	updatedAt time.Time
	lastErr   error
}

// New validates opts and returns a stopped Controller.
func New(opts Options) (*Controller, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("snapshot fetcher is required")
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = stream.WebSocketDialer{}
	}
	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = sched.Real{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	backoff := stream.DefaultBackoff()
	if opts.NewBackoff != nil {
		backoff = opts.NewBackoff()
	}

	c := &Controller{
		sched:   scheduler,
		fetcher: opts.Fetcher,
		logger:  logger.WithPrefix("sync"),
		metrics: opts.Metrics,
		maxItem: opts.MaxItems,
		store:   state.NewStore(opts.MaxItems),
	}

	conn, err := stream.NewConnection(stream.Options{
		URL:          opts.StreamURL,
		Dialer:       dialer,
		Scheduler:    scheduler,
		Exec:         c.exec,
		Backoff:      backoff,
		PingInterval: opts.PingInterval,
		Logger:       logger.WithPrefix("stream"),
		OnState:      c.onState,
		OnMessage:    c.onMessage,
		OnDiscard:    c.onDiscard,
		OnReconnect:  c.onReconnect,
	})
	if err != nil {
		return nil, err
	}
	c.conn = conn

	c.poller = NewPoller(PollerOptions{
		Fetcher:   opts.Fetcher,
		Scheduler: scheduler,
		Exec:      c.exec,
		Interval:  opts.PollInterval,
		Logger:    logger.WithPrefix("poller"),
		OnItems:   func(items []feed.FeedItem) { c.merge(metrics.SourcePoller, items) },
		OnResult: func(err error) {
			c.metrics.RecordFetch(callerPoller, err)
			c.lastErr = err
		},
	})
	return c, nil
}

func (c *Controller) exec(fn func()) {
	c.serial.Do(fn)
}

// Start loads the initial snapshot and opens the stream with a fresh, empty
// store. Calling Start while running does nothing.
func (c *Controller) Start() {
	c.exec(func() {
		if c.running {
			return
		}
		c.running = true
		c.gen++
		c.ctx, c.cancel = context.WithCancel(context.Background())
		c.store = state.NewStore(c.maxItem)
		c.updatedAt = time.Time{}
		c.lastErr = nil
		c.logger.Info("sync started")

		gen, ctx := c.gen, c.ctx
		c.initial = c.sched.AfterFunc(0, func() { c.loadInitial(ctx, gen) })
		c.conn.Start()
	})
}

// Stop closes the stream and cancels every timer and in-flight fetch. Nothing
// observable changes after Stop returns. Calling Stop while stopped does
// nothing.
func (c *Controller) Stop() {
	c.exec(func() {
		if !c.running {
			return
		}
		c.running = false
		c.gen++
		sched.Stop(c.initial)
		c.initial = nil
		c.poller.Stop()
		c.conn.Stop()
		c.cancel()
		c.logger.Info("sync stopped")
	})
}

// CurrentItems returns a copy of the stored items, newest first.
func (c *Controller) CurrentItems() []feed.FeedItem {
	var items []feed.FeedItem
	c.exec(func() { items = c.store.Items() })
	return items
}

// ConnectionStatus returns the stream's current state.
func (c *Controller) ConnectionStatus() stream.State {
	var status stream.State
	c.exec(func() { status = c.status })
	return status
}

// Snapshot returns items, status and bookkeeping from a single read.
func (c *Controller) Snapshot() View {
	var v View
	c.exec(func() {
		v = View{
			Items:        c.store.Items(),
			Status:       c.status,
			UpdatedAt:    c.updatedAt,
			LastError:    c.lastErr,
			PollerActive: c.poller.Active(),
			Running:      c.running,
		}
	})
	return v
}

func (c *Controller) loadInitial(ctx context.Context, gen uint64) {
	var stale bool
	c.exec(func() {
		stale = !c.running || c.gen != gen
		c.initial = nil
	})
	if stale {
		return
	}

	items, err := c.fetcher.FetchSnapshot(ctx)

	c.exec(func() {
		if !c.running || c.gen != gen {
			return
		}
		c.metrics.RecordFetch(callerStartup, err)
		if err != nil {
			c.lastErr = err
			c.logger.Warn("initial snapshot failed", "error", err)
			return
		}
		c.lastErr = nil
		if c.store.Len() == 0 {
			c.replace(metrics.SourceSnapshot, items)
			return
		}
		c.merge(metrics.SourceSnapshot, items)
	})
}

func (c *Controller) onState(from, to stream.State) {
	c.status = to
	c.metrics.SetState(to.String(), stateNames())
	switch to {
	case stream.StateOpen:
		c.poller.Stop()
	case stream.StateClosed:
		if c.running {
			c.poller.Start(c.ctx)
		}
	}
}

func (c *Controller) onMessage(msg feed.Message) {
	if !c.running {
		return
	}
	switch m := msg.(type) {
	case feed.InitMessage:
		if c.store.Len() == 0 {
			c.replace(metrics.SourceStream, m.Items)
			return
		}
		c.merge(metrics.SourceStream, m.Items)
	case feed.BatchMessage:
		c.merge(metrics.SourceStream, m.Items)
	}
}

func (c *Controller) onDiscard(reason string, _ error) {
	c.metrics.RecordDiscard(reason)
}

func (c *Controller) onReconnect(time.Duration) {
	c.metrics.RecordReconnect()
}

func (c *Controller) merge(source string, items []feed.FeedItem) {
	c.record(source, c.store.Merge(items))
}

func (c *Controller) replace(source string, items []feed.FeedItem) {
	c.record(source, c.store.Replace(items))
}

func (c *Controller) record(source string, res state.MergeResult) {
	c.metrics.RecordMerge(source, len(res.Accepted), len(res.Evicted), c.store.Len())
	if len(res.Accepted) == 0 {
		return
	}
	c.updatedAt = c.sched.Now()
	c.logger.Debug("merged items", "source", source,
		"accepted", len(res.Accepted), "evicted", len(res.Evicted), "duplicates", res.Duplicates)
}

func stateNames() []string {
	states := stream.States()
	names := make([]string, 0, len(states))
	for _, s := range states {
		names = append(names, s.String())
	}
	return names
}
