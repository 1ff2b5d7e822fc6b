package dns

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// NetBIOSPort is the NetBIOS name service port.
const NetBIOSPort = 137

const (
	// nbstatType is the NetBIOS Node Status query type (RFC 1002).
	nbstatType = 0x0021
	// wildcardName is "*" padded to 16 bytes in first-level encoding.
	wildcardName = "CKAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA."
	// nbstatNamesOff is where the name count sits in a response to the
	// wildcard query: header, echoed name, type, class, TTL, rdlength.
	nbstatNamesOff = 56
	nbstatEntryLen = 18
)

// NetBIOS asks a host for its NetBIOS name table over UDP/137, like
// nmblookup -A. Windows machines and Samba servers answer.
type NetBIOS struct {
	Port int
}

// NewNetBIOS returns a NetBIOS node status source.
func NewNetBIOS() *NetBIOS {
	return &NetBIOS{Port: NetBIOSPort}
}

// Name identifies the source in logs.
func (n *NetBIOS) Name() string { return "netbios" }

// LookupAddr returns the unique workstation name registered by ip.
func (n *NetBIOS) LookupAddr(ctx context.Context, ip string) (string, error) {
	target := net.ParseIP(ip).To4()
	if target == nil {
		return "", fmt.Errorf("invalid IPv4 address: %q", ip)
	}
	req, err := buildNBSTATRequest()
	if err != nil {
		return "", err
	}

	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return "", fmt.Errorf("udp listen: %w", err)
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultTimeout)
	}
	_ = conn.SetDeadline(deadline)
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	port := n.Port
	if port == 0 {
		port = NetBIOSPort
	}
	if _, err := conn.WriteTo(req, &net.UDPAddr{IP: target, Port: port}); err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}

	buf := make([]byte, 2048)
	read, _, err := conn.ReadFrom(buf)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return parseNBSTATResponse(buf[:read])
}

func buildNBSTATRequest() ([]byte, error) {
	msg := new(dns.Msg)
	msg.Id = dns.Id()
	msg.Question = []dns.Question{{Name: wildcardName, Qtype: nbstatType, Qclass: dns.ClassINET}}
	return msg.Pack()
}

// parseNBSTATResponse returns the first unique name with the workstation
// suffix from a node status response.
func parseNBSTATResponse(data []byte) (string, error) {
	if len(data) <= nbstatNamesOff {
		return "", fmt.Errorf("response too short: %d bytes", len(data))
	}
	count := int(data[nbstatNamesOff])
	off := nbstatNamesOff + 1
	for i := 0; i < count && off+nbstatEntryLen <= len(data); i++ {
		entry := data[off : off+nbstatEntryLen]
		off += nbstatEntryLen

		suffix := entry[15]
		group := binary.BigEndian.Uint16(entry[16:18])&0x8000 != 0
		if suffix != 0x00 || group {
			continue
		}
		if name := strings.TrimRight(string(entry[:15]), " \x00"); name != "" {
			return name, nil
		}
	}
	return "", errNoWorkstationName
}

var errNoWorkstationName = errors.New("no workstation name in node status")
