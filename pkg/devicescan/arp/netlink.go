package arp

import (
	"encoding/binary"
	"net"
)

// Netlink neighbor dump layout (linux/netlink.h, linux/neighbour.h).
const (
	nlMsgHdrLen  = 16
	ndMsgLen     = 12
	rtAttrHdrLen = 4

	nlmsgDone    = 3
	rtmNewNeigh  = 28
	ndaDst       = 1
	ndaLLAddr    = 2
	ndmFamilyOff = 0
)

// ParseNeighborMessages walks an RTM_GETNEIGH dump and extracts IPv4 to
// hardware address pairs. Entries without a six byte link layer address are
// skipped. It never panics on malformed input.
func ParseNeighborMessages(b []byte) []Entry {
	var entries []Entry
	for off := 0; off+nlMsgHdrLen <= len(b); {
		msgLen := int(binary.NativeEndian.Uint32(b[off:]))
		msgType := binary.NativeEndian.Uint16(b[off+4:])
		if msgLen < nlMsgHdrLen || off+msgLen > len(b) {
			break
		}
		msg := b[off : off+msgLen]
		off += align4(msgLen)

		if msgType == nlmsgDone {
			break
		}
		if msgType != rtmNewNeigh {
			continue
		}
		if e, ok := parseNeighborMessage(msg[nlMsgHdrLen:]); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

func parseNeighborMessage(body []byte) (Entry, bool) {
	if len(body) < ndMsgLen || body[ndmFamilyOff] != afInet {
		return Entry{}, false
	}

	var e Entry
	for p := ndMsgLen; p+rtAttrHdrLen <= len(body); {
		attrLen := int(binary.NativeEndian.Uint16(body[p:]))
		attrType := binary.NativeEndian.Uint16(body[p+2:])
		if attrLen < rtAttrHdrLen || p+attrLen > len(body) {
			break
		}
		data := body[p+rtAttrHdrLen : p+attrLen]

		switch attrType {
		case ndaDst:
			if len(data) == 4 {
				e.IPAddress = net.IP(data).String()
			}
		case ndaLLAddr:
			if len(data) == hwAddrLen {
				e.HardwareAddress = formatHardwareAddr(data)
			}
		}
		p += align4(attrLen)
	}

	if e.IPAddress == "" || e.HardwareAddress == "" {
		return Entry{}, false
	}
	return e, true
}
