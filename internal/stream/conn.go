package stream

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/five82/headlines/internal/feed"
	"github.com/five82/headlines/internal/logging"
	"github.com/five82/headlines/internal/sched"
)

// DefaultPingInterval is how often a keepalive frame is sent while open.
const DefaultPingInterval = 20000 * time.Millisecond

// Discard reasons passed to Options.OnDiscard.
const (
	DiscardMalformed = "malformed"
	DiscardUnknown   = "unknown_type"
)

// Options configures a Connection.
type Options struct {
	URL          string
	Dialer       Dialer
	Scheduler    sched.Scheduler
	Exec         sched.Executor
	Backoff      *Backoff
	PingInterval time.Duration
	Logger       *log.Logger

	// OnState is called after every accepted transition.
	OnState func(from, to State)
	// OnMessage receives init and batch messages that arrived while open.
	OnMessage func(msg feed.Message)
	// OnDiscard is called for frames that were dropped without effect.
	OnDiscard func(reason string, err error)
	// OnReconnect is called with the delay each time a retry is scheduled.
	OnReconnect func(delay time.Duration)
}

// Connection keeps a stream open, reconnecting with backoff until stopped.
//
// Start, Stop and State must be called from inside Exec. Transport events and
// timer callbacks enter through Exec on their own.
type Connection struct {
	url       string
	dialer    Dialer
	sched     sched.Scheduler
	exec      sched.Executor
	backoff   *Backoff
	pingEvery time.Duration
	logger    *log.Logger

	onState     func(from, to State)
	onMessage   func(msg feed.Message)
	onDiscard   func(reason string, err error)
	onReconnect func(delay time.Duration)

	state     State
	stopped   bool
	gen       uint64
	session   *session
	transport Transport
	reconnect sched.Timer
	ping      sched.Timer
}

// NewConnection validates opts and returns an idle Connection.
func NewConnection(opts Options) (*Connection, error) {
	if opts.URL == "" {
		return nil, errors.New("stream url is required")
	}
	if opts.Dialer == nil {
		return nil, errors.New("stream dialer is required")
	}
	c := &Connection{
		url:         opts.URL,
		dialer:      opts.Dialer,
		sched:       opts.Scheduler,
		exec:        opts.Exec,
		backoff:     opts.Backoff,
		pingEvery:   opts.PingInterval,
		logger:      opts.Logger,
		onState:     opts.OnState,
		onMessage:   opts.OnMessage,
		onDiscard:   opts.OnDiscard,
		onReconnect: opts.OnReconnect,
		stopped:     true,
	}
	if c.sched == nil {
		c.sched = sched.Real{}
	}
	if c.exec == nil {
		c.exec = sched.Inline
	}
	if c.backoff == nil {
		c.backoff = DefaultBackoff()
	}
	if c.pingEvery <= 0 {
		c.pingEvery = DefaultPingInterval
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	return c, nil
}

// State returns the current lifecycle state.
func (c *Connection) State() State {
	return c.state
}

// Start begins connecting. It is a no-op while connecting or open. A pending
// reconnect is replaced by an immediate attempt with a fresh backoff.
func (c *Connection) Start() {
	c.stopped = false
	if c.state == StateConnecting || c.state == StateOpen {
		return
	}
	c.gen++
	sched.Stop(c.reconnect)
	c.reconnect = nil
	c.backoff.Reset()
	c.connect()
}

// Stop closes the transport and cancels every pending timer. No transition
// happens after Stop returns; a connecting or open stream ends up closed.
func (c *Connection) Stop() {
	if c.stopped {
		return
	}
	c.stopped = true
	c.gen++
	sched.Stop(c.reconnect)
	c.reconnect = nil
	c.stopPing()
	c.session = nil
	c.closeTransport()
	if c.state == StateConnecting || c.state == StateOpen {
		c.transition(StateClosed)
	}
	c.logger.Info("stream stopped")
}

func (c *Connection) connect() {
	if c.stopped || !c.transition(StateConnecting) {
		return
	}
	s := &session{id: uuid.NewString(), conn: c}
	c.session = s
	c.logger.Debug("dialing", "url", c.url, "session", s.id)

	t, err := c.dialer.Dial(c.url, s)
	if err != nil {
		c.logger.Warn("dial failed", "session", s.id, "error", err)
		c.fail(err)
		return
	}
	c.transport = t
}

func (c *Connection) handleOpened(s *session) {
	if s != c.session || c.state != StateConnecting {
		return
	}
	if !c.transition(StateOpen) {
		return
	}
	c.backoff.Reset()
	c.logger.Info("stream open", "session", s.id)
	c.schedulePing(s)
}

func (c *Connection) handleMessage(s *session, data []byte) {
	if s != c.session || c.state != StateOpen {
		return
	}
	msg, err := feed.DecodeMessage(data)
	if err != nil {
		c.logger.Debug("discarding frame", "session", s.id, "error", err)
		c.discard(DiscardMalformed, err)
		return
	}
	switch m := msg.(type) {
	case feed.InitMessage, feed.BatchMessage:
		if c.onMessage != nil {
			c.onMessage(m)
		}
	case feed.PongMessage:
		c.logger.Debug("pong", "session", s.id)
	case feed.UnknownMessage:
		c.logger.Debug("discarding frame", "session", s.id, "type", m.Type)
		c.discard(DiscardUnknown, fmt.Errorf("unknown frame type %q", m.Type))
	}
}

func (c *Connection) handleFailed(s *session, err error) {
	if s != c.session {
		return
	}
	c.logger.Warn("stream error", "session", s.id, "error", err)
	c.fail(err)
}

func (c *Connection) handleClosed(s *session) {
	if s != c.session {
		return
	}
	c.logger.Info("stream closed", "session", s.id)
	c.enterClosed()
}

func (c *Connection) fail(err error) {
	if !c.transition(StateError) {
		return
	}
	c.stopPing()
	c.closeTransport()
	c.enterClosed()
}

func (c *Connection) enterClosed() {
	c.stopPing()
	c.closeTransport()
	c.session = nil
	if !c.transition(StateClosed) {
		return
	}
	if !c.stopped {
		c.scheduleReconnect()
	}
}

func (c *Connection) scheduleReconnect() {
	delay := c.backoff.Next()
	gen := c.gen
	c.logger.Info("reconnect scheduled", "delay", delay)
	if c.onReconnect != nil {
		c.onReconnect(delay)
	}
	c.reconnect = c.sched.AfterFunc(delay, func() {
		c.exec(func() {
			if c.stopped || c.gen != gen {
				return
			}
			c.reconnect = nil
			c.connect()
		})
	})
}

func (c *Connection) schedulePing(s *session) {
	c.ping = c.sched.AfterFunc(c.pingEvery, func() {
		c.exec(func() {
			if s != c.session || c.state != StateOpen || c.transport == nil {
				return
			}
			if err := c.transport.Send(feed.PingFrame()); err != nil {
				c.logger.Debug("ping failed", "session", s.id, "error", err)
			}
			c.schedulePing(s)
		})
	})
}

func (c *Connection) stopPing() {
	sched.Stop(c.ping)
	c.ping = nil
}

func (c *Connection) closeTransport() {
	if c.transport == nil {
		return
	}
	if err := c.transport.Close(); err != nil {
		c.logger.Debug("close transport", "error", err)
	}
	c.transport = nil
}

func (c *Connection) discard(reason string, err error) {
	if c.onDiscard != nil {
		c.onDiscard(reason, err)
	}
}

func (c *Connection) transition(next State) bool {
	prev := c.state
	if !prev.CanTransition(next) {
		c.logger.Warn("rejected transition", "from", prev, "to", next)
		return false
	}
	c.state = next
	c.logger.Debug("state", "from", prev, "to", next)
	if c.onState != nil {
		c.onState(prev, next)
	}
	return true
}

// session binds transport events to one dial attempt. Events from a session
// that is no longer current are ignored.
type session struct {
	id   string
	conn *Connection
}

func (s *session) Opened() {
	s.conn.exec(func() { s.conn.handleOpened(s) })
}

func (s *session) Message(data []byte) {
	s.conn.exec(func() { s.conn.handleMessage(s, data) })
}

func (s *session) Failed(err error) {
	s.conn.exec(func() { s.conn.handleFailed(s, err) })
}

func (s *session) Closed() {
	s.conn.exec(func() { s.conn.handleClosed(s) })
}
