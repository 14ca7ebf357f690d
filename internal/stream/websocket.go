package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const defaultWriteTimeout = 5 * time.Second

// WebSocketDialer connects with gorilla/websocket. The zero value uses
// websocket.DefaultDialer.
type WebSocketDialer struct {
	Dialer       *websocket.Dialer
	Header       http.Header
	WriteTimeout time.Duration
}

// Dial implements Dialer. The handshake and read loop run on a new goroutine.
func (d WebSocketDialer) Dial(url string, events Events) (Transport, error) {
	if url == "" {
		return nil, errors.New("stream url is empty")
	}
	if events == nil {
		return nil, errors.New("events sink is nil")
	}
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	timeout := d.WriteTimeout
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &wsTransport{events: events, cancel: cancel, writeTimeout: timeout}
	go t.run(ctx, dialer, url, d.Header.Clone())
	return t, nil
}

type wsTransport struct {
	events       Events
	cancel       context.CancelFunc
	writeTimeout time.Duration

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

func (t *wsTransport) run(ctx context.Context, dialer *websocket.Dialer, url string, header http.Header) {
	conn, resp, err := dialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		t.emit(func() { t.events.Failed(fmt.Errorf("dial %s: %w", url, err)) })
		return
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		conn.Close()
		return
	}
	t.conn = conn
	t.mu.Unlock()

	t.emit(t.events.Opened)

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				t.emit(t.events.Closed)
			} else {
				t.emit(func() { t.events.Failed(fmt.Errorf("read: %w", err)) })
			}
			conn.Close()
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		t.emit(func() { t.events.Message(data) })
	}
}

// emit runs fn unless the owner already closed the transport.
func (t *wsTransport) emit(fn func()) {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if !closed {
		fn()
	}
}

func (t *wsTransport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errors.New("transport closed")
	}
	if t.conn == nil {
		return errors.New("transport not open")
	}
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := t.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (t *wsTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	t.cancel()
	if t.conn == nil {
		return nil
	}
	deadline := time.Now().Add(t.writeTimeout)
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return t.conn.Close()
}
