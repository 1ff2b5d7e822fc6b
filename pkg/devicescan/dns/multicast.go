package dns

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
)

const (
	// MDNSPort is the mDNS port.
	MDNSPort = 5353
	// MDNSMulticastAddr is the mDNS multicast group.
	MDNSMulticastAddr = "224.0.0.251"
	// LLMNRPort is the LLMNR port.
	LLMNRPort = 5355
	// LLMNRMulticastAddr is the LLMNR multicast group.
	LLMNRMulticastAddr = "224.0.0.252"

	// multicastWindow caps how long a multicast query waits for answers.
	multicastWindow = 1 * time.Second
)

// PTRSource sends a reverse PTR query to a host, first over multicast
// (answers filtered by source address) and then unicast to the host itself.
// It backs both the mDNS and the LLMNR sources.
type PTRSource struct {
	Label string
	Port  int
	// Group is the multicast address; empty disables the multicast attempt.
	Group string
}

// NewMDNS returns a source speaking mDNS (Bonjour, Avahi).
func NewMDNS() *PTRSource {
	return &PTRSource{Label: "mdns", Port: MDNSPort, Group: MDNSMulticastAddr}
}

// NewLLMNR returns a source speaking LLMNR (Windows, systemd-resolved).
func NewLLMNR() *PTRSource {
	return &PTRSource{Label: "llmnr", Port: LLMNRPort, Group: LLMNRMulticastAddr}
}

// Name identifies the source in logs.
func (p *PTRSource) Name() string { return p.Label }

// LookupAddr asks ip (or the multicast group on its behalf) for its name.
func (p *PTRSource) LookupAddr(ctx context.Context, ip string) (string, error) {
	target := net.ParseIP(ip).To4()
	if target == nil {
		return "", fmt.Errorf("invalid IPv4 address: %q", ip)
	}
	reverse, err := dns.ReverseAddr(ip)
	if err != nil {
		return "", err
	}

	query := new(dns.Msg)
	query.SetQuestion(reverse, dns.TypePTR)
	query.RecursionDesired = false
	data, err := query.Pack()
	if err != nil {
		return "", fmt.Errorf("pack query: %w", err)
	}

	if p.Group != "" {
		group := &net.UDPAddr{IP: net.ParseIP(p.Group), Port: p.Port}
		if name := exchange(ctx, data, group, target, multicastWindow); name != "" {
			return name, nil
		}
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if name := exchange(ctx, data, &net.UDPAddr{IP: target, Port: p.Port}, target, 0); name != "" {
		return name, nil
	}
	return "", ErrNoAnswer
}

// exchange sends data to dst and reads answers until one from want carries
// a PTR record or the deadline passes.
func exchange(ctx context.Context, data []byte, dst *net.UDPAddr, want net.IP, window time.Duration) string {
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return ""
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultTimeout)
	}
	if window > 0 && time.Now().Add(window).Before(deadline) {
		deadline = time.Now().Add(window)
	}
	_ = conn.SetDeadline(deadline)

	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if _, err := conn.WriteTo(data, dst); err != nil {
		return ""
	}

	buf := make([]byte, 4096)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			return ""
		}
		if udp, ok := from.(*net.UDPAddr); !ok || !udp.IP.Equal(want) {
			continue
		}
		if name := parsePTRResponse(buf[:n]); name != "" {
			return name
		}
	}
}

// parsePTRResponse returns the first PTR target in a DNS response.
func parsePTRResponse(data []byte) string {
	msg := new(dns.Msg)
	if err := msg.Unpack(data); err != nil {
		return ""
	}
	if !msg.Response {
		return ""
	}
	for _, rr := range msg.Answer {
		if ptr, ok := rr.(*dns.PTR); ok {
			return strings.TrimSuffix(ptr.Ptr, ".")
		}
	}
	return ""
}
