// Package stream maintains the live /ws/news connection.
//
// A Connection moves through a small state machine:
//
//	idle ──Start──▶ connecting ──opened──▶ open
//	                   │                    │
//	                   ├──failed──▶ error ◀─┤
//	                   │              │     │
//	                   └──closed──▶ closed ◀┘
//	                                  │
//	                   ◀──backoff──────┘   (unless stopped)
//
// Entering open resets the Backoff and starts a keepalive ping. Entering closed
// stops the ping and schedules the next attempt after Backoff.Next. Stop sets a
// do-not-reconnect flag, closes the transport and cancels both timers.
//
// Transports are pluggable through Dialer. Each dial gets a session; events
// from a session other than the current one are dropped, so a slow transport
// that reports after being replaced cannot move the state machine.
//
// Decoded init and batch frames are handed to Options.OnMessage. What to do
// with them (replace or merge) is the caller's decision.
package stream
