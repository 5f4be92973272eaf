package transceiver

import (
	"errors"
	"fmt"
)

// State is the transport state of a Transceiver
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFaulted:
		return "faulted"
	}
	return fmt.Sprintf("unknown State %d", int(s))
}

// Status is a snapshot of the session flags, delivered to
// Config.OnStatus whenever one of them changes.
type Status struct {
	State       State
	Connected   bool
	Linked      bool
	HaveTraffic bool
	Halted      bool
}

var (
	// ErrHalted is returned by Connect once Halt has been called.
	// Halt is permanent for a Transceiver.
	ErrHalted = errors.New("transceiver halted")

	errNotConnected = errors.New("not connected")
)

// TransportUnavailableError is returned by Connect when the sockets
// can't be acquired
type TransportUnavailableError struct {
	Op  string
	Err error
}

func (e *TransportUnavailableError) Error() string {
	return fmt.Sprintf("transport unavailable: %s: %v", e.Op, e.Err)
}

func (e *TransportUnavailableError) Unwrap() error {
	return e.Err
}
