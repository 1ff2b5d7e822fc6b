package lan

import (
	"context"

	"github.com/marcuoli/go-devicescan/internal/scanner"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/arp"
)

// enricher turns probe results into devices. It lives for one scan so the
// SSDP search runs at most once.
type enricher struct {
	svc *Service
	cfg Config

	serversFetched bool
	servers        map[string]string
}

func (e *enricher) enrich(ctx context.Context, alive []scanner.Result) []Device {
	s := e.svc
	ips := make([]string, len(alive))
	for i, r := range alive {
		ips[i] = r.Address
	}

	macs := map[string]string{}
	if s.Neighbors != nil {
		entries, err := s.Neighbors.ReadTable()
		if err != nil {
			debugLog("neighbor table unavailable: %v", err)
		} else {
			macs = arp.Map(entries)
		}
	}

	if s.Hardware != nil {
		var missing []string
		for _, ip := range ips {
			if macs[ip] == "" {
				missing = append(missing, ip)
			}
		}
		if len(missing) > 0 {
			for ip, mac := range s.Hardware.Resolve(ctx, missing) {
				macs[ip] = mac
			}
		}
	}

	var names map[string]string
	if s.Names != nil {
		names = s.Names.ResolveMany(ctx, ips, e.cfg.HostnameTimeout)
	}

	if s.Servers != nil && !e.serversFetched {
		e.serversFetched = true
		servers, err := s.Servers.Servers(ctx)
		if err != nil {
			debugLog("SSDP search failed: %v", err)
		}
		e.servers = servers
	}

	devices := make([]Device, 0, len(alive))
	for _, r := range alive {
		d := Device{
			ID:              s.id(),
			IPAddress:       r.Address,
			HardwareAddress: macs[r.Address],
			Hostname:        names[r.Address],
			Server:          e.servers[r.Address],
			OpenPorts:       r.OpenPorts,
			DiscoveredAt:    s.timestamp(),
		}
		d.Name = d.Hostname
		if d.Name == "" {
			d.Name = d.IPAddress
		}
		if s.Vendors != nil && d.HardwareAddress != "" {
			d.Vendor = s.Vendors.LookupName(d.HardwareAddress)
		}
		devices = append(devices, d)
	}
	return devices
}
