package network

import (
	"fmt"
	"net"
	"strings"

	"github.com/marcuoli/go-devicescan/pkg/devicescan/scanerr"
)

// Provider reads the IPv4 configuration of a single designated interface.
// Other interfaces are ignored so that results stay deterministic.
type Provider struct {
	// InterfaceName selects the interface; empty picks the platform's
	// wireless interface (see WirelessInterface).
	InterfaceName string
}

// NewProvider returns a provider for the platform's primary wireless interface.
func NewProvider() *Provider {
	return &Provider{}
}

// CurrentInfo returns the interface's first IPv4 address and mask.
func (p *Provider) CurrentInfo() (Info, error) {
	name := p.InterfaceName
	if name == "" {
		ifaces, err := net.Interfaces()
		if err != nil {
			return Info{}, fmt.Errorf("%w: list interfaces: %v", scanerr.ErrNetworkUnavailable, err)
		}
		name = WirelessInterface(ifaces)
	}

	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return Info{}, fmt.Errorf("%w: interface %s: %v", scanerr.ErrNetworkUnavailable, name, err)
	}
	if ifi.Flags&net.FlagUp == 0 {
		return Info{}, fmt.Errorf("%w: interface %s is down", scanerr.ErrNetworkUnavailable, name)
	}

	addrs, err := ifi.Addrs()
	if err != nil {
		return Info{}, fmt.Errorf("%w: interface %s addresses: %v", scanerr.ErrNetworkUnavailable, name, err)
	}
	info, ok := firstIPv4(addrs)
	if !ok {
		return Info{}, fmt.Errorf("%w: interface %s has no IPv4 address", scanerr.ErrNetworkUnavailable, name)
	}
	debugLog("%s: %s/%d (broadcast %s)", name, info.LocalIP, info.CIDRPrefix, info.BroadcastAddress)
	return info, nil
}

// WirelessInterface picks DefaultInterface when it exists, else the first
// up, non-loopback interface named with WirelessPrefix (wlp2s0 and the
// like), else DefaultInterface so the error names it.
func WirelessInterface(ifaces []net.Interface) string {
	for _, ifi := range ifaces {
		if ifi.Name == DefaultInterface {
			return DefaultInterface
		}
	}
	for _, ifi := range ifaces {
		if ifi.Flags&net.FlagUp == 0 || ifi.Flags&net.FlagLoopback != 0 {
			continue
		}
		if strings.HasPrefix(ifi.Name, WirelessPrefix) {
			debugLog("%s not present, using %s", DefaultInterface, ifi.Name)
			return ifi.Name
		}
	}
	return DefaultInterface
}

func firstIPv4(addrs []net.Addr) (Info, bool) {
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		ip4 := ipnet.IP.To4()
		if ip4 == nil || len(ipnet.Mask) == 0 {
			continue
		}
		mask := net.IP(ipnet.Mask).To4()
		if mask == nil {
			// 16-byte masks for IPv4 addresses
			if len(ipnet.Mask) == net.IPv6len {
				mask = net.IP(ipnet.Mask[12:]).To4()
			}
			if mask == nil {
				continue
			}
		}
		info, err := Derive(ip4.String(), mask.String())
		if err != nil {
			continue
		}
		return info, true
	}
	return Info{}, false
}
