//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package arp

import (
	"context"
	"time"
)

// DefaultTimeout is the default timeout for one active ARP request.
const DefaultTimeout = 1 * time.Second

// Result contains the result of an active ARP lookup.
type Result struct {
	IP              string
	HardwareAddress string
	IsUp            bool
	Duration        time.Duration
	Error           error
}

// Discovery is a stub on platforms without raw ARP support.
type Discovery struct {
	Timeout   time.Duration
	Interface string
}

// NewDiscovery creates an ARP discovery helper.
func NewDiscovery() *Discovery {
	return &Discovery{Timeout: DefaultTimeout}
}

// LookupAddr always returns ErrNotSupported.
func (a *Discovery) LookupAddr(ctx context.Context, ip string) (*Result, error) {
	return &Result{IP: ip, Error: ErrNotSupported}, ErrNotSupported
}

// Resolve finds nothing on this platform.
func (a *Discovery) Resolve(ctx context.Context, ips []string) map[string]string {
	return map[string]string{}
}

// IsSupported reports whether active ARP is available on this platform.
func IsSupported() bool {
	return false
}
