// Package network reads the active interface's IPv4 configuration and splits
// its subnet into priority tiers for probing.
//
// Only IPv4 is handled. The tier layout assumes a /24-sized host range.
package network

import (
	"fmt"
	"math/bits"
	"net"
)

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from interface lookups.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Info describes the IPv4 configuration of the scanned interface.
type Info struct {
	LocalIP          string
	SubnetMask       string
	BroadcastAddress string
	CIDRPrefix       int
}

// Derive computes the broadcast address and prefix length for ip/mask.
func Derive(ip, mask string) (Info, error) {
	addr, err := parseIPv4(ip)
	if err != nil {
		return Info{}, err
	}
	m, err := parseIPv4(mask)
	if err != nil {
		return Info{}, err
	}
	a, mm := ipToUint32(addr), ipToUint32(m)
	return Info{
		LocalIP:          addr.String(),
		SubnetMask:       m.String(),
		BroadcastAddress: uint32ToIP(a | ^mm).String(),
		CIDRPrefix:       bits.OnesCount32(mm),
	}, nil
}

// NetworkPrefix returns the first three octets of ip&mask, e.g. "192.168.1".
func NetworkPrefix(ip, mask string) (string, error) {
	addr, err := parseIPv4(ip)
	if err != nil {
		return "", err
	}
	m, err := parseIPv4(mask)
	if err != nil {
		return "", err
	}
	n := ipToUint32(addr) & ipToUint32(m)
	return fmt.Sprintf("%d.%d.%d", byte(n>>24), byte(n>>16), byte(n>>8)), nil
}

func parseIPv4(s string) (net.IP, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, fmt.Errorf("invalid IPv4 address %q", s)
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return nil, fmt.Errorf("not an IPv4 address: %q", s)
	}
	return ip4, nil
}

func ipToUint32(ip net.IP) uint32 {
	ip = ip.To4()
	return uint32(ip[0])<<24 | uint32(ip[1])<<16 | uint32(ip[2])<<8 | uint32(ip[3])
}

func uint32ToIP(u uint32) net.IP {
	return net.IPv4(byte(u>>24), byte(u>>16), byte(u>>8), byte(u))
}

// CompareIP orders two IPv4 strings numerically. Unparseable values sort last.
func CompareIP(a, b string) int {
	ia, ea := parseIPv4(a)
	ib, eb := parseIPv4(b)
	switch {
	case ea != nil && eb != nil:
		if a < b {
			return -1
		} else if a > b {
			return 1
		}
		return 0
	case ea != nil:
		return 1
	case eb != nil:
		return -1
	}
	ua, ub := ipToUint32(ia), ipToUint32(ib)
	switch {
	case ua < ub:
		return -1
	case ua > ub:
		return 1
	}
	return 0
}
