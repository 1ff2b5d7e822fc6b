package radio

import (
	"errors"
	"strings"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"
)

const (
	// stopRetryInterval spaces the stop requests sent while a scan is still
	// registering with the adapter.
	stopRetryInterval = 10 * time.Millisecond
	// stopWindow bounds how long StopScan waits for the listener to exit.
	stopWindow = 2 * time.Second
)

var errStopTimeout = errors.New("bluetooth scan did not stop")

// adapter is the part of the Bluetooth adapter API the stack drives.
type adapter interface {
	Enable() error
	// Scan blocks, delivering advertisements, until StopScan.
	Scan(handle func(Advertisement)) error
	// StopScan fails when Scan has not registered yet.
	StopScan() error
}

// tinygoAdapter converts tinygo scan results into advertisements.
type tinygoAdapter struct {
	*bluetooth.Adapter
}

func (a tinygoAdapter) Scan(handle func(Advertisement)) error {
	return a.Adapter.Scan(func(_ *bluetooth.Adapter, r bluetooth.ScanResult) {
		handle(Advertisement{
			ID:   r.Address.String(),
			Name: r.LocalName(),
			RSSI: int(r.RSSI),
		})
	})
}

// BluetoothStack drives the host's default Bluetooth adapter (BlueZ on
// Linux, CoreBluetooth on macOS, WinRT on Windows).
type BluetoothStack struct {
	adapter adapter

	mu       sync.Mutex
	state    State
	handler  func(State)
	scanning bool
	stopping bool
	exited   chan struct{} // closed when the current listener goroutine returns
}

// NewBluetoothStack wraps the default adapter. Call Enable before scanning.
func NewBluetoothStack() *BluetoothStack {
	return newBluetoothStack(tinygoAdapter{bluetooth.DefaultAdapter})
}

func newBluetoothStack(a adapter) *BluetoothStack {
	return &BluetoothStack{adapter: a, state: StateUnknown}
}

// Enable powers up the adapter and records the resulting state.
func (b *BluetoothStack) Enable() error {
	err := b.adapter.Enable()
	b.setState(stateFromError(err))
	return err
}

// State reports the last known adapter state.
func (b *BluetoothStack) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// SetStateHandler registers the callback for state changes.
func (b *BluetoothStack) SetStateHandler(h func(State)) {
	b.mu.Lock()
	b.handler = h
	b.mu.Unlock()
}

// StartScan begins an active scan that delivers every advertisement to
// handle until StopScan.
func (b *BluetoothStack) StartScan(handle func(Advertisement)) error {
	b.mu.Lock()
	if b.scanning {
		b.mu.Unlock()
		return nil
	}
	b.scanning = true
	b.stopping = false
	exited := make(chan struct{})
	b.exited = exited
	b.mu.Unlock()

	go func() {
		defer close(exited)

		b.mu.Lock()
		if b.stopping {
			b.scanning = false
			b.mu.Unlock()
			debugLog("bluetooth scan stopped before it started")
			return
		}
		b.mu.Unlock()

		err := b.adapter.Scan(handle)

		b.mu.Lock()
		stopping := b.stopping
		b.scanning = false
		b.mu.Unlock()

		if err != nil && !stopping {
			debugLog("bluetooth scan ended: %v", err)
			b.setState(stateFromError(err))
		}
	}()
	return nil
}

// StopScan halts a running scan and waits for the listener to exit. A
// stop that arrives while the adapter is still registering the scan is
// repeated until the adapter accepts it. It does nothing when idle.
func (b *BluetoothStack) StopScan() error {
	b.mu.Lock()
	if !b.scanning {
		b.mu.Unlock()
		return nil
	}
	b.stopping = true
	exited := b.exited
	b.mu.Unlock()

	deadline := time.NewTimer(stopWindow)
	defer deadline.Stop()
	ticker := time.NewTicker(stopRetryInterval)
	defer ticker.Stop()

	stopped := false
	for {
		if !stopped {
			stopped = b.adapter.StopScan() == nil
		}
		select {
		case <-exited:
			return nil
		case <-deadline.C:
			return errStopTimeout
		case <-ticker.C:
		}
	}
}

func (b *BluetoothStack) setState(st State) {
	b.mu.Lock()
	changed := b.state != st
	b.state = st
	h := b.handler
	b.mu.Unlock()
	if changed && h != nil {
		h(st)
	}
}

// stateFromError maps an adapter error onto a stack state. The adapter
// libraries only report errors, so the text is all there is to go on.
func stateFromError(err error) State {
	if err == nil {
		return StatePoweredOn
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission"), strings.Contains(msg, "not authorized"),
		strings.Contains(msg, "unauthorized"), strings.Contains(msg, "access denied"):
		return StateUnauthorized
	case strings.Contains(msg, "powered off"), strings.Contains(msg, "not powered"),
		strings.Contains(msg, "poweredoff"):
		return StatePoweredOff
	case strings.Contains(msg, "not supported"), strings.Contains(msg, "unsupported"):
		return StateUnsupported
	default:
		return StateUnknown
	}
}
