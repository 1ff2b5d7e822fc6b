package arp

import (
	"encoding/binary"
	"testing"
)

func sockaddrIn(ip [4]byte) []byte {
	sa := make([]byte, 16)
	sa[0] = 16
	sa[1] = afInet
	copy(sa[4:8], ip[:])
	return sa
}

// sockaddrDL builds a sockaddr_dl with an interface name and link address.
func sockaddrDL(name string, lladdr []byte) []byte {
	saLen := sockaddrDLDataOff + len(name) + len(lladdr)
	if saLen < 20 {
		saLen = 20
	}
	sa := make([]byte, saLen)
	sa[0] = byte(saLen)
	sa[1] = afLink
	sa[sockaddrDLNlenOff] = byte(len(name))
	sa[sockaddrDLAlenOff] = byte(len(lladdr))
	copy(sa[sockaddrDLDataOff:], name)
	copy(sa[sockaddrDLDataOff+len(name):], lladdr)
	return sa
}

func pad4(b []byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

func routeMsg(addrs uint32, sockaddrs ...[]byte) []byte {
	msg := make([]byte, rtMsgHdrLen)
	binary.NativeEndian.PutUint32(msg[rtMsgAddrsOff:], addrs)
	for _, sa := range sockaddrs {
		msg = append(msg, pad4(sa)...)
	}
	binary.NativeEndian.PutUint16(msg[0:], uint16(len(msg)))
	return msg
}

var mac = []byte{0xaa, 0xbb, 0xcc, 0x01, 0x02, 0x03}

func TestParseRouteMessages(t *testing.T) {
	var buf []byte
	buf = append(buf, routeMsg(1<<rtaxDst|1<<rtaxGateway,
		sockaddrIn([4]byte{192, 168, 1, 10}), sockaddrDL("en0", mac))...)
	buf = append(buf, routeMsg(1<<rtaxDst|1<<rtaxGateway,
		sockaddrIn([4]byte{192, 168, 1, 11}), sockaddrDL("en0", []byte{1, 2, 3, 4, 5, 6}))...)

	got := ParseRouteMessages(buf)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(got), got)
	}
	if got[0].IPAddress != "192.168.1.10" || got[0].HardwareAddress != "aa:bb:cc:01:02:03" {
		t.Errorf("entry 0 = %+v", got[0])
	}
	if got[1].IPAddress != "192.168.1.11" || got[1].HardwareAddress != "01:02:03:04:05:06" {
		t.Errorf("entry 1 = %+v", got[1])
	}
}

func TestParseRouteMessages_SkipsIncomplete(t *testing.T) {
	tests := []struct {
		name string
		msg  []byte
	}{
		{"no link address", routeMsg(1<<rtaxDst|1<<rtaxGateway,
			sockaddrIn([4]byte{10, 0, 0, 1}), sockaddrDL("en0", nil))},
		{"eight byte link address", routeMsg(1<<rtaxDst|1<<rtaxGateway,
			sockaddrIn([4]byte{10, 0, 0, 2}), sockaddrDL("en0", []byte{1, 2, 3, 4, 5, 6, 7, 8}))},
		{"gateway missing", routeMsg(1<<rtaxDst, sockaddrIn([4]byte{10, 0, 0, 3}))},
		{"gateway not link", routeMsg(1<<rtaxDst|1<<rtaxGateway,
			sockaddrIn([4]byte{10, 0, 0, 4}), sockaddrIn([4]byte{10, 0, 0, 254}))},
		{"header only", routeMsg(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseRouteMessages(tt.msg); len(got) != 0 {
				t.Errorf("expected no entries, got %+v", got)
			}
		})
	}
}

func TestParseRouteMessages_ZeroLengthSockaddr(t *testing.T) {
	// A zero sa_len slot still occupies four bytes.
	zero := make([]byte, 4)
	msg := routeMsg(1<<rtaxDst|1<<rtaxGateway|1<<2,
		sockaddrIn([4]byte{10, 0, 0, 5}), sockaddrDL("en0", mac), zero)
	got := ParseRouteMessages(msg)
	if len(got) != 1 || got[0].IPAddress != "10.0.0.5" {
		t.Fatalf("got %+v", got)
	}
}

func TestParseRouteMessages_Tolerance(t *testing.T) {
	good := routeMsg(1<<rtaxDst|1<<rtaxGateway, sockaddrIn([4]byte{10, 0, 0, 6}), sockaddrDL("en0", mac))

	t.Run("zero length message skips a header", func(t *testing.T) {
		buf := append(make([]byte, rtMsgHdrLen), good...)
		if got := ParseRouteMessages(buf); len(got) != 1 {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("short message skipped", func(t *testing.T) {
		short := make([]byte, 8)
		binary.NativeEndian.PutUint16(short, 8)
		buf := append(short, good...)
		if got := ParseRouteMessages(buf); len(got) != 1 {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("truncated tail stops", func(t *testing.T) {
		buf := append(append([]byte{}, good...), good[:len(good)-10]...)
		if got := ParseRouteMessages(buf); len(got) != 1 {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("sockaddr overruns message", func(t *testing.T) {
		bad := routeMsg(1<<rtaxDst|1<<rtaxGateway, sockaddrIn([4]byte{10, 0, 0, 7}), sockaddrDL("en0", mac))
		bad[rtMsgHdrLen+16] = 250
		if got := ParseRouteMessages(bad); len(got) != 0 {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("garbage never panics", func(t *testing.T) {
		inputs := [][]byte{nil, {1}, {0xff, 0xff}, {0, 0, 0, 0}, good[:rtMsgHdrLen+3]}
		for _, in := range inputs {
			ParseRouteMessages(in)
		}
		for i := range good {
			mutated := append([]byte{}, good...)
			mutated[i] ^= 0xff
			ParseRouteMessages(mutated)
		}
	})
}

func BenchmarkParseRouteMessages(b *testing.B) {
	var buf []byte
	for i := 1; i <= 254; i++ {
		buf = append(buf, routeMsg(1<<rtaxDst|1<<rtaxGateway,
			sockaddrIn([4]byte{192, 168, 1, byte(i)}), sockaddrDL("en0", mac))...)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ParseRouteMessages(buf)
	}
}
