package main

import (
	"go.uber.org/zap"

	"github.com/marcuoli/go-devicescan/internal/config"
	"github.com/marcuoli/go-devicescan/internal/logging"
	"github.com/marcuoli/go-devicescan/pkg/devicescan"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/arp"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/dns"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/lan"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/network"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/oui"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/radio"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/ssdp"
)

// newLANService builds the IP branch from the configuration.
func newLANService(c *config.Config) *lan.Service {
	svc := lan.NewService(c.LANConfig())
	svc.Info = &network.Provider{InterfaceName: c.Interface}
	svc.Names = newResolver(c)

	if c.ActiveARP {
		if arp.IsSupported() {
			d := arp.NewDiscovery()
			d.Interface = c.Interface
			svc.Hardware = d
		} else {
			logging.Warn("Active ARP is not supported on this platform")
		}
	}

	if c.OUIDatabase != "" {
		db, err := oui.Open(c.OUIDatabase)
		if err != nil {
			logging.Warn("Vendor lookup disabled", zap.Error(err))
		} else {
			svc.Vendors = db
		}
	}

	if c.EnableSSDP {
		svc.Servers = ssdp.NewDiscovery()
	}
	return svc
}

func newResolver(c *config.Config) *dns.Resolver {
	r := dns.NewResolver()
	r.Timeout = c.HostnameTimeout.Duration()
	r.Workers = c.ResolverWorkers
	if c.EnableMDNS {
		r.Sources = append(r.Sources, dns.NewMDNS())
	}
	if c.EnableLLMNR {
		r.Sources = append(r.Sources, dns.NewLLMNR())
	}
	if c.EnableNetBIOS {
		r.Sources = append(r.Sources, dns.NewNetBIOS())
	}
	return r
}

// newRadioScanner enables the Bluetooth adapter. When that fails the
// scanner is still returned; its first scan reports the adapter state.
func newRadioScanner() *radio.Scanner {
	stack := radio.NewBluetoothStack()
	if err := stack.Enable(); err != nil {
		logging.Warn("Bluetooth adapter unavailable", zap.Error(err), zap.Stringer("state", stack.State()))
	}
	return radio.NewScanner(stack)
}

func newCoordinator(c *config.Config, withRadio bool, store devicescan.SessionStore) *devicescan.Coordinator {
	var radioBranch devicescan.Scanner
	if withRadio {
		radioBranch = devicescan.RadioScanner(newRadioScanner())
	}
	coord := devicescan.NewCoordinator(radioBranch, devicescan.LANScanner(newLANService(c)), store)
	coord.BranchTimeout = c.BranchTimeout.Duration()
	return coord
}
