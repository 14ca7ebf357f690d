package feedsync

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/five82/headlines/internal/feed"
	"github.com/five82/headlines/internal/logging"
	"github.com/five82/headlines/internal/sched"
)

// DefaultPollInterval is the fallback snapshot cadence.
const DefaultPollInterval = 10000 * time.Millisecond

// PollerOptions configures a Poller.
type PollerOptions struct {
	Fetcher   feed.SnapshotFetcher
	Scheduler sched.Scheduler
	Exec      sched.Executor
	Interval  time.Duration
	Logger    *log.Logger

	// OnItems receives every successful snapshot. Runs inside Exec.
	OnItems func(items []feed.FeedItem)
	// OnResult is told about every completed fetch, dropped ones excluded.
	// Runs inside Exec.
	OnResult func(err error)
}

// Poller refetches the snapshot on a fixed period while active. A failed
// fetch skips the cycle; the next tick tries again.
//
// Start, Stop and Active must be called from inside Exec.
type Poller struct {
	fetcher  feed.SnapshotFetcher
	sched    sched.Scheduler
	exec     sched.Executor
	interval time.Duration
	logger   *log.Logger
	onItems  func(items []feed.FeedItem)
	onResult func(err error)

	active   bool
	gen      uint64
	ctx      context.Context
	timer    sched.Timer
	inFlight bool
}

// NewPoller returns an inactive Poller.
func NewPoller(opts PollerOptions) *Poller {
	p := &Poller{
		fetcher:  opts.Fetcher,
		sched:    opts.Scheduler,
		exec:     opts.Exec,
		interval: opts.Interval,
		logger:   opts.Logger,
		onItems:  opts.OnItems,
		onResult: opts.OnResult,
	}
	if p.sched == nil {
		p.sched = sched.Real{}
	}
	if p.exec == nil {
		p.exec = sched.Inline
	}
	if p.interval <= 0 {
		p.interval = DefaultPollInterval
	}
	if p.logger == nil {
		p.logger = logging.Discard()
	}
	return p
}

// Active reports whether the poller is running.
func (p *Poller) Active() bool {
	return p.active
}

// Start activates the poller. The first fetch happens one interval later.
// Fetches use ctx until the next Start.
func (p *Poller) Start(ctx context.Context) {
	if p.active {
		return
	}
	p.active = true
	p.gen++
	p.ctx = ctx
	p.inFlight = false
	p.logger.Info("fallback polling started", "interval", p.interval)
	p.schedule(p.gen)
}

// Stop deactivates the poller. A fetch already in flight is dropped when it
// completes.
func (p *Poller) Stop() {
	if !p.active {
		return
	}
	p.active = false
	p.gen++
	sched.Stop(p.timer)
	p.timer = nil
	p.logger.Info("fallback polling stopped")
}

func (p *Poller) schedule(gen uint64) {
	p.timer = p.sched.AfterFunc(p.interval, func() { p.tick(gen) })
}

func (p *Poller) tick(gen uint64) {
	var (
		run bool
		ctx context.Context
	)
	p.exec(func() {
		if !p.active || p.gen != gen {
			return
		}
		p.schedule(gen)
		if p.inFlight {
			p.logger.Debug("previous poll still running, skipping tick")
			return
		}
		p.inFlight = true
		run = true
		ctx = p.ctx
	})
	if !run {
		return
	}

	items, err := p.fetcher.FetchSnapshot(ctx)

	p.exec(func() {
		if p.gen != gen {
			p.logger.Debug("dropping poll result after deactivation")
			return
		}
		p.inFlight = false
		if p.onResult != nil {
			p.onResult(err)
		}
		if err != nil {
			p.logger.Warn("poll failed", "error", err)
			return
		}
		if p.onItems != nil {
			p.onItems(items)
		}
	})
}
