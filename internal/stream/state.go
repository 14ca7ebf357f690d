package stream

// State is the lifecycle state of a streaming connection.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
	StateError
)

var stateNames = [...]string{
	StateIdle:       "idle",
	StateConnecting: "connecting",
	StateOpen:       "open",
	StateClosed:     "closed",
	StateError:      "error",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// CanTransition reports whether the connection may move from s to next.
func (s State) CanTransition(next State) bool {
	switch s {
	case StateIdle, StateClosed:
		return next == StateConnecting
	case StateConnecting:
		return next == StateOpen || next == StateError || next == StateClosed
	case StateOpen:
		return next == StateError || next == StateClosed
	case StateError:
		return next == StateClosed
	}
	return false
}

// States lists every state in declaration order.
func States() []State {
	return []State{StateIdle, StateConnecting, StateOpen, StateClosed, StateError}
}
