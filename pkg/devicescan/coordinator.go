package devicescan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marcuoli/go-devicescan/pkg/devicescan/lan"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/radio"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/scanerr"
)

// BranchTimeout is how long each branch of a full scan runs.
const BranchTimeout = 15 * time.Second

// Scanner is one branch of a discovery session.
type Scanner interface {
	StartScan(ctx context.Context, timeout time.Duration) ([]DiscoveredDevice, error)
	StopScan()
}

// SessionStore persists finished sessions. The returned session replaces
// the one passed in, so stores may assign IDs or timestamps.
type SessionStore interface {
	Save(ctx context.Context, s Session) (Session, error)
}

// RadioScanner adapts a radio scanner to the Scanner interface.
func RadioScanner(s *radio.Scanner) Scanner {
	return radioBranch{s}
}

type radioBranch struct{ s *radio.Scanner }

func (b radioBranch) StartScan(ctx context.Context, timeout time.Duration) ([]DiscoveredDevice, error) {
	devices, err := b.s.StartScan(ctx, timeout)
	if err != nil {
		return nil, err
	}
	out := make([]DiscoveredDevice, 0, len(devices))
	for _, d := range devices {
		out = append(out, FromRadio(d))
	}
	return out, nil
}

func (b radioBranch) StopScan() { b.s.StopScan() }

// LANScanner adapts an IP discovery service to the Scanner interface.
func LANScanner(s *lan.Service) Scanner {
	return lanBranch{s}
}

type lanBranch struct{ s *lan.Service }

func (b lanBranch) StartScan(ctx context.Context, timeout time.Duration) ([]DiscoveredDevice, error) {
	devices, err := b.s.StartScan(ctx, timeout)
	if err != nil {
		return nil, err
	}
	out := make([]DiscoveredDevice, 0, len(devices))
	for _, d := range devices {
		out = append(out, FromIP(d))
	}
	return out, nil
}

func (b lanBranch) StopScan() { b.s.StopScan() }

// Disabled returns a branch that finds nothing and never fails.
func Disabled() Scanner { return disabled{} }

type disabled struct{}

func (disabled) StartScan(context.Context, time.Duration) ([]DiscoveredDevice, error) {
	return nil, nil
}

func (disabled) StopScan() {}

// Coordinator runs the radio and IP branches together and saves the merged
// result. A session is all or nothing: if either branch fails, both are
// stopped and nothing is saved.
type Coordinator struct {
	Radio         Scanner
	IP            Scanner
	Store         SessionStore
	BranchTimeout time.Duration

	mu      sync.Mutex
	running bool
}

// NewCoordinator creates a coordinator. A nil branch is treated as Disabled.
func NewCoordinator(radioScanner, ipScanner Scanner, store SessionStore) *Coordinator {
	if radioScanner == nil {
		radioScanner = Disabled()
	}
	if ipScanner == nil {
		ipScanner = Disabled()
	}
	return &Coordinator{
		Radio:         radioScanner,
		IP:            ipScanner,
		Store:         store,
		BranchTimeout: BranchTimeout,
	}
}

// PerformFullScan runs both branches for BranchTimeout each.
func (c *Coordinator) PerformFullScan(ctx context.Context) (Session, error) {
	timeout := c.BranchTimeout
	if timeout <= 0 {
		timeout = BranchTimeout
	}
	return c.StartScan(ctx, timeout)
}

// StartScan runs both branches with the given per-branch timeout and
// returns the saved session. A second call while one is running fails with
// ErrScanAlreadyInProgress and leaves the running scan alone.
func (c *Coordinator) StartScan(ctx context.Context, timeout time.Duration) (Session, error) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return Session{}, scanerr.ErrScanAlreadyInProgress
	}
	c.running = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	start := time.Now()
	debugLog(ComponentSession, "session started (timeout %v per branch)", timeout)

	var radioDevices, ipDevices []DiscoveredDevice
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		devices, err := c.branch(c.Radio).StartScan(gctx, timeout)
		if err != nil {
			return fmt.Errorf("radio scan: %w", err)
		}
		radioDevices = devices
		return nil
	})
	g.Go(func() error {
		devices, err := c.branch(c.IP).StartScan(gctx, timeout)
		if err != nil {
			return fmt.Errorf("ip scan: %w", err)
		}
		ipDevices = devices
		return nil
	})
	if err := g.Wait(); err != nil {
		c.StopAllScans()
		if scanerr.IsStructural(err) {
			debugLog(ComponentSession, "session aborted: %v", err)
		} else {
			debugLog(ComponentSession, "session failed: %v", err)
		}
		return Session{}, err
	}

	devices := make([]DiscoveredDevice, 0, len(radioDevices)+len(ipDevices))
	devices = append(devices, radioDevices...)
	devices = append(devices, ipDevices...)
	session := NewSession(devices)
	debugLog(ComponentSession, "scan complete: %d radio, %d ip (%v)",
		len(radioDevices), len(ipDevices), time.Since(start).Round(time.Millisecond))

	if c.Store == nil {
		return session, nil
	}
	saved, err := c.Store.Save(ctx, session)
	if err != nil {
		c.StopAllScans()
		return Session{}, scanerr.Failed("save session", err)
	}
	debugLogVerbose(ComponentSession, "session %s saved", saved.ID)
	return saved, nil
}

// StopAllScans stops both branches. Safe to call at any time.
func (c *Coordinator) StopAllScans() {
	c.branch(c.Radio).StopScan()
	c.branch(c.IP).StopScan()
}

// Scanning reports whether a session is in progress.
func (c *Coordinator) Scanning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Coordinator) branch(s Scanner) Scanner {
	if s == nil {
		return disabled{}
	}
	return s
}
