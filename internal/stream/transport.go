package stream

// Events receives what happens on one dialed transport. Implementations of
// Transport call these from their own goroutine, never from inside Dial or
// Close. After Failed or Closed no further events are delivered.
type Events interface {
	Opened()
	Message(data []byte)
	Failed(err error)
	Closed()
}

// Transport is an established or in-progress stream.
type Transport interface {
	// Send writes one text frame.
	Send(data []byte) error
	// Close tears the transport down. Events raised afterwards are suppressed.
	Close() error
}

// Dialer starts an asynchronous connection to url. A returned error means the
// attempt failed before any event could be delivered.
type Dialer interface {
	Dial(url string, events Events) (Transport, error)
}
