// Package lan discovers devices on the local IPv4 subnet.
//
// A scan walks the /24 around the active interface in three priority tiers.
// Each tier is probed concurrently with TCP connects; the hosts that answer
// are then enriched from the neighbor table, reverse name lookups and the
// optional vendor, active ARP and SSDP sources.
package lan

import (
	"context"
	"time"

	"github.com/marcuoli/go-devicescan/internal/scanner"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/arp"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/network"
)

// DebugLogger is a callback for debug logging.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

const (
	// DefaultTimeout bounds a whole scan when the caller gives none.
	DefaultTimeout = 15 * time.Second
	// DefaultSettleDelay lets the kernel record neighbor entries after a sweep.
	DefaultSettleDelay = 500 * time.Millisecond
	// DefaultHostnameTimeout bounds one reverse name lookup.
	DefaultHostnameTimeout = 2 * time.Second
)

// Device is a host that answered on the local subnet.
type Device struct {
	ID              string    `json:"id"`
	IPAddress       string    `json:"ip_address"`
	HardwareAddress string    `json:"hardware_address,omitempty"`
	Hostname        string    `json:"hostname,omitempty"`
	Name            string    `json:"name"`
	Vendor          string    `json:"vendor,omitempty"`
	Server          string    `json:"server,omitempty"`
	OpenPorts       []int     `json:"open_ports,omitempty"`
	DiscoveredAt    time.Time `json:"discovered_at"`
}

// Config holds the tunables of a scan. Zero fields take their defaults; a
// negative SettleDelay turns the pause off.
type Config struct {
	Ports           []int
	ProbeTimeout    time.Duration
	SettleDelay     time.Duration
	HostnameTimeout time.Duration
}

// DefaultConfig returns the stock probe ports and delays.
func DefaultConfig() Config {
	return Config{
		Ports:           append([]int(nil), scanner.DefaultPorts...),
		ProbeTimeout:    scanner.DefaultTimeout,
		SettleDelay:     DefaultSettleDelay,
		HostnameTimeout: DefaultHostnameTimeout,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if len(c.Ports) == 0 {
		c.Ports = d.Ports
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = d.ProbeTimeout
	}
	switch {
	case c.SettleDelay == 0:
		c.SettleDelay = d.SettleDelay
	case c.SettleDelay < 0:
		c.SettleDelay = 0
	}
	if c.HostnameTimeout <= 0 {
		c.HostnameTimeout = d.HostnameTimeout
	}
	return c
}

// InfoProvider reports the active interface's address and mask.
type InfoProvider interface {
	CurrentInfo() (network.Info, error)
}

// Prober finds the live hosts among a set of addresses.
type Prober interface {
	ProbeAll(ctx context.Context, addresses []string, ports []int, timeout time.Duration) []scanner.Result
}

// NeighborReader snapshots the kernel's IP to hardware address table.
type NeighborReader interface {
	ReadTable() ([]arp.Entry, error)
}

// NameResolver maps addresses to host names.
type NameResolver interface {
	ResolveMany(ctx context.Context, ips []string, timeout time.Duration) map[string]string
}

// VendorLookup names the manufacturer of a hardware address.
type VendorLookup interface {
	LookupName(mac string) string
}

// HardwareResolver actively asks hosts for their hardware address.
type HardwareResolver interface {
	Resolve(ctx context.Context, ips []string) map[string]string
}

// ServerSource maps addresses to announced UPnP Server headers.
type ServerSource interface {
	Servers(ctx context.Context) (map[string]string, error)
}
