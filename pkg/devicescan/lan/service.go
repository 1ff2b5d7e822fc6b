package lan

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/marcuoli/go-devicescan/internal/scanner"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/arp"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/dns"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/network"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/scanerr"
)

// Terminal causes of a scan; the first one recorded wins.
const (
	causeNone int32 = iota
	causeDone
	causeTimeout
	causeFailed
	causeStopped
)

type run struct {
	cause  atomic.Int32
	cancel context.CancelFunc
	timer  *time.Timer
}

func (r *run) end(cause int32) bool {
	if !r.cause.CompareAndSwap(causeNone, cause) {
		return false
	}
	r.cancel()
	return true
}

// Service scans the local subnet. Only Info, Prober, Neighbors and Names
// are required; the remaining sources are skipped when nil.
type Service struct {
	Config    Config
	Info      InfoProvider
	Prober    Prober
	Neighbors NeighborReader
	Names     NameResolver
	Vendors   VendorLookup
	Hardware  HardwareResolver
	Servers   ServerSource

	now   func() time.Time
	newID func() string

	mu  sync.Mutex
	run *run
}

// NewService returns a service wired to the real interface, TCP prober,
// neighbor table and system resolver.
func NewService(cfg Config) *Service {
	return &Service{
		Config:    cfg,
		Info:      network.NewProvider(),
		Prober:    scanner.Prober{},
		Neighbors: arp.Table{},
		Names:     dns.NewResolver(),
	}
}

// StartScan sweeps the subnet tier by tier until every tier is done, the
// timeout fires, ctx is cancelled or StopScan is called. A timeout returns
// whatever was found so far, or ErrScanTimeout if nothing was.
func (s *Service) StartScan(ctx context.Context, timeout time.Duration) ([]Device, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	s.mu.Lock()
	if s.run != nil {
		s.mu.Unlock()
		return nil, scanerr.ErrScanAlreadyInProgress
	}
	scanCtx, cancel := context.WithCancel(ctx)
	r := &run{cancel: cancel}
	r.timer = time.AfterFunc(timeout, func() {
		if r.end(causeTimeout) {
			debugLog("scan timed out after %v", timeout)
		}
	})
	s.run = r
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		r.timer.Stop()
		s.run = nil
		s.mu.Unlock()
		cancel()
	}()

	devices, err := s.scan(scanCtx)
	switch {
	case err == nil:
		r.end(causeDone)
	case scanCtx.Err() == nil:
		r.end(causeFailed)
	default:
		// Parent cancellation counts as a stop.
		r.end(causeStopped)
	}

	switch r.cause.Load() {
	case causeDone:
		return devices, nil
	case causeTimeout:
		if len(devices) == 0 {
			return nil, scanerr.ErrScanTimeout
		}
		return devices, nil
	case causeFailed:
		return nil, err
	default:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, context.Canceled
	}
}

// StopScan cancels a running scan, which then returns context.Canceled.
// Safe to call at any time, any number of times.
func (s *Service) StopScan() {
	s.mu.Lock()
	r := s.run
	if r != nil {
		r.timer.Stop()
	}
	s.mu.Unlock()
	if r != nil && r.end(causeStopped) {
		debugLog("scan stopped")
	}
}

// Scanning reports whether a scan is in progress.
func (s *Service) Scanning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run != nil
}

// scan returns the devices accumulated so far together with ctx.Err() when
// interrupted.
func (s *Service) scan(ctx context.Context) ([]Device, error) {
	cfg := s.Config.withDefaults()

	info, err := s.Info.CurrentInfo()
	if err != nil {
		if !errors.Is(err, scanerr.ErrNetworkUnavailable) {
			err = fmt.Errorf("%w: %v", scanerr.ErrNetworkUnavailable, err)
		}
		return nil, err
	}
	tiers, err := network.GenerateRanges(info.LocalIP, info.SubnetMask)
	if err != nil {
		return nil, scanerr.Failed("generate address ranges", err)
	}
	debugLog("scanning %s/%d on ports %v", info.LocalIP, info.CIDRPrefix, cfg.Ports)

	e := &enricher{svc: s, cfg: cfg}
	found := make(map[string]Device)
	for _, tier := range tiers {
		if ctx.Err() != nil {
			return collect(found), ctx.Err()
		}

		start := time.Now()
		alive := s.Prober.ProbeAll(ctx, tier.Addresses, cfg.Ports, cfg.ProbeTimeout)
		debugLog("%s tier: %d/%d alive (%v)", tier.Priority, len(alive), len(tier.Addresses), time.Since(start).Round(time.Millisecond))

		if err := sleep(ctx, cfg.SettleDelay); err != nil {
			return collect(found), err
		}
		if len(alive) == 0 {
			continue
		}
		for _, d := range e.enrich(ctx, alive) {
			found[d.IPAddress] = d
		}
	}
	return collect(found), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func collect(found map[string]Device) []Device {
	if len(found) == 0 {
		return nil
	}
	out := make([]Device, 0, len(found))
	for _, d := range found {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return network.CompareIP(out[i].IPAddress, out[j].IPAddress) < 0
	})
	return out
}

func (s *Service) timestamp() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *Service) id() string {
	if s.newID != nil {
		return s.newID()
	}
	return uuid.NewString()
}
