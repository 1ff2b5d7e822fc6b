// Package radio scans for devices advertising over a short-range radio link
// (Bluetooth Low Energy) for a bounded time.
package radio

import (
	"fmt"
	"time"
)

// DebugLogger is a callback for debug logging.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// State is the power and authorization state reported by a radio stack.
type State int

const (
	StateUnknown State = iota
	StateResetting
	StateUnsupported
	StateUnauthorized
	StatePoweredOff
	StatePoweredOn
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateResetting:
		return "resetting"
	case StateUnsupported:
		return "unsupported"
	case StateUnauthorized:
		return "unauthorized"
	case StatePoweredOff:
		return "powered-off"
	case StatePoweredOn:
		return "powered-on"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ConnectionState is the link state of an advertising peripheral.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
)

func (c ConnectionState) String() string {
	switch c {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// MarshalText encodes the state by name.
func (c ConnectionState) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a state name.
func (c *ConnectionState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "disconnected", "":
		*c = Disconnected
	case "connecting":
		*c = Connecting
	case "connected":
		*c = Connected
	default:
		return fmt.Errorf("unknown connection state %q", b)
	}
	return nil
}

// Advertisement is one sighting delivered by the stack.
type Advertisement struct {
	ID         string
	Name       string
	RSSI       int
	Connection ConnectionState
}

// Device is a peripheral seen during a scan.
type Device struct {
	ID             string          `json:"id"`
	Name           string          `json:"name,omitempty"`
	SignalStrength int             `json:"signal_strength"`
	Connection     ConnectionState `json:"connection"`
	DiscoveredAt   time.Time       `json:"discovered_at"`
}

// Stack is the radio hardware seen by the scanner.
type Stack interface {
	// State reports the current power/authorization state.
	State() State
	// SetStateHandler registers a callback for state changes.
	SetStateHandler(func(State))
	// StartScan begins delivering advertisements and returns once listening.
	StartScan(func(Advertisement)) error
	// StopScan halts advertisement delivery. It is safe to call when idle.
	StopScan() error
}
