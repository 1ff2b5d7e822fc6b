package radio

import (
	"context"
	"sync"
	"time"

	"github.com/marcuoli/go-devicescan/pkg/devicescan/scanerr"
)

// DefaultTimeout is the scan duration used when none is given.
const DefaultTimeout = 15 * time.Second

type outcome struct {
	devices []Device
	err     error
}

// Scanner runs one timed advertisement scan at a time.
//
// Exactly one of timer expiry, stack state change, stack failure, caller
// cancellation or StopScan completes a scan; whichever comes first takes the
// completion slot and the others become no-ops.
type Scanner struct {
	stack Stack
	now   func() time.Time

	mu      sync.Mutex
	busy    bool
	done    chan outcome
	timer   *time.Timer
	devices map[string]*Device
	order   []string
}

// NewScanner creates a scanner driving stack and subscribes to its state
// changes.
func NewScanner(stack Stack) *Scanner {
	s := &Scanner{stack: stack, now: time.Now}
	stack.SetStateHandler(s.handleState)
	return s
}

// StartScan listens for advertisements for timeout and returns the devices
// seen. It fails with ErrScanTimeout when nothing was seen, with the mapped
// radio error when the stack is not powered on, and with ctx.Err() or
// context.Canceled when cancelled.
func (s *Scanner) StartScan(ctx context.Context, timeout time.Duration) ([]Device, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, scanerr.ErrScanAlreadyInProgress
	}
	if err := stateError(s.stack.State()); err != nil {
		s.mu.Unlock()
		debugLog("not starting: %v", err)
		return nil, err
	}
	done := make(chan outcome, 1)
	s.busy = true
	s.done = done
	s.devices = make(map[string]*Device)
	s.order = nil
	s.mu.Unlock()

	debugLog("scan started (timeout %v)", timeout)
	if err := s.stack.StartScan(s.handleAdvertisement); err != nil {
		s.finish(func() outcome { return outcome{err: scanerr.Failed("start radio scan", err)} })
	} else {
		s.mu.Lock()
		active := s.done == done
		if active {
			s.timer = time.AfterFunc(timeout, s.handleTimeout)
		}
		s.mu.Unlock()
		if !active {
			// Stopped while the stack was starting; its listener is live again.
			s.stack.StopScan()
		}
	}

	select {
	case o := <-done:
		return o.devices, o.err
	case <-ctx.Done():
		s.finish(func() outcome { return outcome{err: ctx.Err()} })
		o := <-done
		return o.devices, o.err
	}
}

// StopScan halts the stack and resolves a pending scan with
// context.Canceled. Safe to call at any time, any number of times.
func (s *Scanner) StopScan() {
	if s.finish(func() outcome { return outcome{err: context.Canceled} }) {
		return
	}
	if err := s.stack.StopScan(); err != nil {
		debugLog("stop while idle: %v", err)
	}
}

// Scanning reports whether a scan is in progress.
func (s *Scanner) Scanning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// finish takes the completion slot, halts the stack and delivers the
// outcome. It reports false when no scan was waiting.
func (s *Scanner) finish(result func() outcome) bool {
	s.mu.Lock()
	done := s.done
	if done == nil {
		s.mu.Unlock()
		return false
	}
	s.done = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	o := result()
	s.mu.Unlock()

	if err := s.stack.StopScan(); err != nil {
		debugLog("stop scan: %v", err)
	}

	s.mu.Lock()
	s.busy = false
	s.devices = nil
	s.order = nil
	s.mu.Unlock()

	debugLog("scan finished: %d devices, err=%v", len(o.devices), o.err)
	done <- o
	return true
}

func (s *Scanner) handleTimeout() {
	s.finish(func() outcome {
		devices := s.snapshot()
		if len(devices) == 0 {
			return outcome{err: scanerr.ErrScanTimeout}
		}
		return outcome{devices: devices}
	})
}

func (s *Scanner) handleState(st State) {
	err := stateError(st)
	if err == nil {
		return
	}
	if s.finish(func() outcome { return outcome{err: err} }) {
		debugLog("stack went %s mid-scan", st)
	}
}

func (s *Scanner) handleAdvertisement(adv Advertisement) {
	if adv.ID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		return
	}

	if d, ok := s.devices[adv.ID]; ok {
		d.SignalStrength = adv.RSSI
		d.Connection = adv.Connection
		if adv.Name != "" {
			d.Name = adv.Name
		}
		return
	}
	s.devices[adv.ID] = &Device{
		ID:             adv.ID,
		Name:           adv.Name,
		SignalStrength: adv.RSSI,
		Connection:     adv.Connection,
		DiscoveredAt:   s.now(),
	}
	s.order = append(s.order, adv.ID)
	debugLog("found %s %q (%d dBm)", adv.ID, adv.Name, adv.RSSI)
}

// snapshot copies the accumulated devices in first-seen order. Callers hold s.mu.
func (s *Scanner) snapshot() []Device {
	if len(s.order) == 0 {
		return nil
	}
	out := make([]Device, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.devices[id])
	}
	return out
}

func stateError(st State) error {
	switch st {
	case StatePoweredOn:
		return nil
	case StateUnauthorized:
		return scanerr.ErrRadioUnauthorized
	case StatePoweredOff:
		return scanerr.ErrRadioPoweredOff
	default:
		return scanerr.ErrRadioUnavailable
	}
}
