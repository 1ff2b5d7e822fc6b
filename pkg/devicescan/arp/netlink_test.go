package arp

import (
	"encoding/binary"
	"testing"
)

func rtAttr(typ uint16, data []byte) []byte {
	a := make([]byte, rtAttrHdrLen+len(data))
	binary.NativeEndian.PutUint16(a[0:], uint16(len(a)))
	binary.NativeEndian.PutUint16(a[2:], typ)
	copy(a[rtAttrHdrLen:], data)
	return pad4(a)
}

func nlMsg(typ uint16, family byte, attrs ...[]byte) []byte {
	msg := make([]byte, nlMsgHdrLen+ndMsgLen)
	binary.NativeEndian.PutUint16(msg[4:], typ)
	msg[nlMsgHdrLen+ndmFamilyOff] = family
	for _, a := range attrs {
		msg = append(msg, a...)
	}
	binary.NativeEndian.PutUint32(msg[0:], uint32(len(msg)))
	return msg
}

func neigh(ip [4]byte, lladdr []byte) []byte {
	attrs := [][]byte{rtAttr(ndaDst, ip[:])}
	if lladdr != nil {
		attrs = append(attrs, rtAttr(ndaLLAddr, lladdr))
	}
	return nlMsg(rtmNewNeigh, afInet, attrs...)
}

func TestParseNeighborMessages(t *testing.T) {
	var buf []byte
	buf = append(buf, neigh([4]byte{192, 168, 0, 2}, mac)...)
	buf = append(buf, neigh([4]byte{192, 168, 0, 3}, nil)...)
	buf = append(buf, neigh([4]byte{192, 168, 0, 4}, []byte{1, 2, 3, 4, 5, 6, 7, 8})...)
	buf = append(buf, nlMsg(rtmNewNeigh, 10, rtAttr(ndaLLAddr, mac))...)
	buf = append(buf, neigh([4]byte{192, 168, 0, 5}, []byte{6, 5, 4, 3, 2, 1})...)

	got := ParseNeighborMessages(buf)
	want := []Entry{
		{IPAddress: "192.168.0.2", HardwareAddress: "aa:bb:cc:01:02:03"},
		{IPAddress: "192.168.0.5", HardwareAddress: "06:05:04:03:02:01"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseNeighborMessages_StopsAtDone(t *testing.T) {
	buf := append(nlMsg(nlmsgDone, 0), neigh([4]byte{10, 1, 1, 1}, mac)...)
	if got := ParseNeighborMessages(buf); len(got) != 0 {
		t.Fatalf("expected nothing after NLMSG_DONE, got %+v", got)
	}
}

func TestParseNeighborMessages_Tolerance(t *testing.T) {
	good := neigh([4]byte{10, 1, 1, 2}, mac)

	t.Run("truncated tail", func(t *testing.T) {
		buf := append(append([]byte{}, good...), good[:len(good)-6]...)
		if got := ParseNeighborMessages(buf); len(got) != 1 {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("zero length header stops", func(t *testing.T) {
		buf := append(make([]byte, nlMsgHdrLen), good...)
		if got := ParseNeighborMessages(buf); len(got) != 0 {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("bad attribute length", func(t *testing.T) {
		bad := append([]byte{}, good...)
		binary.NativeEndian.PutUint16(bad[nlMsgHdrLen+ndMsgLen:], 200)
		if got := ParseNeighborMessages(bad); len(got) != 0 {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("garbage never panics", func(t *testing.T) {
		for i := range good {
			mutated := append([]byte{}, good...)
			mutated[i] ^= 0xff
			ParseNeighborMessages(mutated)
		}
		ParseNeighborMessages(nil)
		ParseNeighborMessages([]byte{1, 2, 3})
	})
}

func TestMap(t *testing.T) {
	m := Map([]Entry{
		{IPAddress: "10.0.0.1", HardwareAddress: "aa:aa:aa:aa:aa:aa"},
		{IPAddress: "10.0.0.2", HardwareAddress: "bb:bb:bb:bb:bb:bb"},
		{IPAddress: "10.0.0.1", HardwareAddress: "cc:cc:cc:cc:cc:cc"},
	})
	if len(m) != 2 || m["10.0.0.1"] != "cc:cc:cc:cc:cc:cc" {
		t.Errorf("Map = %v", m)
	}
}
