//go:build linux || darwin || freebsd || netbsd || openbsd

package arp

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/j-keck/arping"
)

// DefaultTimeout is the default timeout for one active ARP request.
const DefaultTimeout = 1 * time.Second

// maxInFlight bounds concurrent ARP requests; the OS may rate limit them.
const maxInFlight = 32

// Result contains the result of an active ARP lookup.
type Result struct {
	IP              string
	HardwareAddress string
	IsUp            bool
	Duration        time.Duration
	Error           error
}

// Discovery sends ARP requests for hosts the neighbor table did not know.
// Raw ARP needs elevated privileges on most systems.
type Discovery struct {
	Timeout time.Duration
	// Interface pins requests to one interface; empty lets the route decide.
	Interface string
}

// NewDiscovery creates an ARP discovery helper with defaults.
func NewDiscovery() *Discovery {
	return &Discovery{Timeout: DefaultTimeout}
}

func (a *Discovery) applyTimeout() {
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	arping.SetTimeout(timeout)
}

// LookupAddr asks ip for its hardware address.
func (a *Discovery) LookupAddr(ctx context.Context, ip string) (*Result, error) {
	a.applyTimeout()
	return a.lookup(ctx, ip)
}

func (a *Discovery) lookup(ctx context.Context, ip string) (*Result, error) {
	result := &Result{IP: ip}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		result.Error = ErrInvalidIP
		return result, ErrInvalidIP
	}
	if parsed.To4() == nil {
		result.Error = ErrIPv6NotSupported
		return result, ErrIPv6NotSupported
	}

	type reply struct {
		mac net.HardwareAddr
		dur time.Duration
		err error
	}
	replies := make(chan reply, 1)
	start := time.Now()

	go func() {
		var r reply
		if a.Interface != "" {
			r.mac, r.dur, r.err = arping.PingOverIfaceByName(parsed, a.Interface)
		} else {
			r.mac, r.dur, r.err = arping.Ping(parsed)
		}
		replies <- r
	}()

	select {
	case <-ctx.Done():
		result.Duration = time.Since(start)
		result.Error = ctx.Err()
		return result, ctx.Err()
	case r := <-replies:
		result.Duration = r.dur
		if r.err != nil {
			result.Error = r.err
			debugLog("%s: arping: %v", ip, r.err)
			return result, r.err
		}
		result.HardwareAddress = r.mac.String()
		result.IsUp = true
		debugLog("%s -> %s (%.2fms)", ip, result.HardwareAddress, float64(r.dur.Microseconds())/1000)
		return result, nil
	}
}

// Resolve looks up every address concurrently and returns the ones that
// answered, keyed by IP.
func (a *Discovery) Resolve(ctx context.Context, ips []string) map[string]string {
	found := make(map[string]string)
	if len(ips) == 0 {
		return found
	}

	a.applyTimeout()

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, maxInFlight)
	)
	for _, ip := range ips {
		wg.Add(1)
		go func(addr string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			r, err := a.lookup(ctx, addr)
			if err != nil {
				return
			}
			mu.Lock()
			found[addr] = r.HardwareAddress
			mu.Unlock()
		}(ip)
	}
	wg.Wait()

	debugLog("active ARP: %d/%d answered", len(found), len(ips))
	return found
}

// IsSupported reports whether active ARP is available on this platform.
func IsSupported() bool {
	return true
}
