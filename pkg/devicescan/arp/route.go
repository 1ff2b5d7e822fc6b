package arp

import (
	"encoding/binary"
	"net"
)

// Layout of BSD routing socket messages as returned by sysctl
// {CTL_NET, PF_ROUTE, 0, AF_INET, NET_RT_FLAGS, RTF_LLINFO} on darwin.
const (
	rtMsgHdrLen   = 92 // sizeof(struct rt_msghdr)
	rtMsgAddrsOff = 12 // rtm_addrs
	rtaxDst       = 0
	rtaxGateway   = 1
	rtaxMax       = 8

	afInet = 2
	afLink = 18

	sockaddrInetAddrOff = 4
	sockaddrDLNlenOff   = 5
	sockaddrDLAlenOff   = 6
	sockaddrDLDataOff   = 8
)

// ParseRouteMessages walks a buffer of rt_msghdr records and extracts IPv4
// to hardware address pairs. Records without a six byte link address are
// skipped. It never panics on malformed input.
func ParseRouteMessages(b []byte) []Entry {
	var entries []Entry
	for off := 0; off < len(b); {
		if len(b)-off < 2 {
			break
		}
		msgLen := int(binary.NativeEndian.Uint16(b[off:]))
		if msgLen == 0 {
			off += rtMsgHdrLen
			continue
		}
		if off+msgLen > len(b) {
			break
		}
		msg := b[off : off+msgLen]
		off += msgLen

		if e, ok := parseRouteMessage(msg); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

func parseRouteMessage(msg []byte) (Entry, bool) {
	if len(msg) < rtMsgHdrLen {
		return Entry{}, false
	}
	addrs := binary.NativeEndian.Uint32(msg[rtMsgAddrsOff:])

	var e Entry
	p := rtMsgHdrLen
	for i := 0; i < rtaxMax; i++ {
		if addrs&(1<<i) == 0 {
			continue
		}
		if p+2 > len(msg) {
			break
		}
		saLen := int(msg[p])
		end := p + saLen
		if end > len(msg) {
			break
		}
		sa := msg[p:end]

		switch i {
		case rtaxDst:
			if len(sa) >= sockaddrInetAddrOff+4 && sa[1] == afInet {
				e.IPAddress = net.IP(sa[sockaddrInetAddrOff : sockaddrInetAddrOff+4]).String()
			}
		case rtaxGateway:
			if len(sa) >= sockaddrDLDataOff && sa[1] == afLink {
				nlen := int(sa[sockaddrDLNlenOff])
				alen := int(sa[sockaddrDLAlenOff])
				start := sockaddrDLDataOff + nlen
				if alen == hwAddrLen && start+alen <= len(sa) {
					e.HardwareAddress = formatHardwareAddr(sa[start : start+alen])
				}
			}
		}

		if saLen == 0 {
			p += 4
		} else {
			p += align4(saLen)
		}
	}

	if e.IPAddress == "" || e.HardwareAddress == "" {
		return Entry{}, false
	}
	return e, true
}
