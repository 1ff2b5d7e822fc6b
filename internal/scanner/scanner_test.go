package scanner

import (
	"context"
	"net"
	"os"
	"strconv"
	"testing"
	"time"
)

// listen opens a loopback listener that accepts and drops connections.
func listen(t *testing.T) (int, func()) {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("loopback listener unavailable: %v", err)
	}
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()
	return ln.Addr().(*net.TCPAddr).Port, func() { ln.Close() }
}

// closedPort returns a loopback port with nothing listening on it.
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("loopback listener unavailable: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

func TestProbe_OpenPort(t *testing.T) {
	port, stop := listen(t)
	defer stop()

	res := Probe(context.Background(), "127.0.0.1", []int{port}, time.Second)
	if res == nil {
		t.Fatal("expected the host to be alive")
	}
	if res.Address != "127.0.0.1" {
		t.Errorf("Address = %s", res.Address)
	}
	if len(res.OpenPorts) != 1 || res.OpenPorts[0] != port {
		t.Errorf("OpenPorts = %v, want [%d]", res.OpenPorts, port)
	}
	if res.Elapsed <= 0 {
		t.Errorf("Elapsed = %v, want > 0", res.Elapsed)
	}
}

func TestProbe_StopsAtFirstOpenPort(t *testing.T) {
	a, stopA := listen(t)
	defer stopA()
	b, stopB := listen(t)
	defer stopB()

	res := Probe(context.Background(), "127.0.0.1", []int{a, b}, time.Second)
	if res == nil {
		t.Fatal("expected the host to be alive")
	}
	if len(res.OpenPorts) != 1 || res.OpenPorts[0] != a {
		t.Fatalf("OpenPorts = %v, want only [%d]", res.OpenPorts, a)
	}
}

func TestProbe_SkipsClosedPorts(t *testing.T) {
	open, stop := listen(t)
	defer stop()
	closed := closedPort(t)

	res := Probe(context.Background(), "127.0.0.1", []int{closed, open}, time.Second)
	if res == nil {
		t.Fatal("expected the host to be alive")
	}
	if res.OpenPorts[0] != open {
		t.Errorf("OpenPorts = %v, want [%d]", res.OpenPorts, open)
	}
}

func TestProbe_NoOpenPort(t *testing.T) {
	closed := closedPort(t)
	if res := Probe(context.Background(), "127.0.0.1", []int{closed}, 200*time.Millisecond); res != nil {
		t.Fatalf("expected nil result, got %+v", res)
	}
}

func TestProbe_InvalidInput(t *testing.T) {
	if res := Probe(context.Background(), "not-an-ip", []int{80}, 50*time.Millisecond); res != nil {
		t.Errorf("expected nil for invalid address, got %+v", res)
	}
	if res := Probe(context.Background(), "127.0.0.1", []int{0, 70000}, 50*time.Millisecond); res != nil {
		t.Errorf("expected nil for invalid ports, got %+v", res)
	}
	if res := Probe(context.Background(), "127.0.0.1", nil, 50*time.Millisecond); res != nil {
		t.Errorf("expected nil for empty port list, got %+v", res)
	}
}

func TestProbe_CancelledContext(t *testing.T) {
	port, stop := listen(t)
	defer stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if res := Probe(ctx, "127.0.0.1", []int{port}, time.Second); res != nil {
		t.Errorf("expected nil for cancelled context, got %+v", res)
	}
}

// openFDs counts this process's descriptors, or returns -1 where
// /proc/self/fd is not available.
func openFDs() int {
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		return -1
	}
	return len(entries)
}

func TestProbe_ReleasesSockets(t *testing.T) {
	open, stop := listen(t)
	defer stop()
	closed := closedPort(t)

	probeAll := func() {
		Probe(context.Background(), "127.0.0.1", []int{open}, 200*time.Millisecond)
		Probe(context.Background(), "127.0.0.1", []int{closed}, 200*time.Millisecond)
		// Unroutable test-net address: times out or fails fast depending on the host.
		Probe(context.Background(), "192.0.2.1", []int{9}, 20*time.Millisecond)
	}
	// Warm up so descriptors the runtime keeps (netpoller) are already open.
	probeAll()

	before := OpenSockets()
	fdsBefore := openFDs()
	for i := 0; i < 50; i++ {
		probeAll()
	}
	if after := OpenSockets(); after != before {
		t.Fatalf("socket leak: %d open before, %d after", before, after)
	}

	if fdsBefore < 0 {
		t.Log("/proc/self/fd unavailable, descriptor count not checked")
		return
	}
	// The listener closes accepted connections asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for {
		fds := openFDs()
		if fds <= fdsBefore {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("descriptor leak: %d open before, %d after", fdsBefore, fds)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestProbeAll_CollectsOnlyLiveHosts(t *testing.T) {
	port, stop := listen(t)
	defer stop()

	addrs := []string{"127.0.0.1", "192.0.2.1", "not-an-ip"}
	results := ProbeAll(context.Background(), addrs, []int{port}, 100*time.Millisecond)
	if len(results) != 1 {
		t.Fatalf("expected 1 live host, got %d: %+v", len(results), results)
	}
	if results[0].Address != "127.0.0.1" {
		t.Errorf("Address = %s", results[0].Address)
	}
}

func TestProbeAll_Empty(t *testing.T) {
	if results := ProbeAll(context.Background(), nil, DefaultPorts, DefaultTimeout); results != nil {
		t.Errorf("expected nil, got %v", results)
	}
}

func TestProbeAll_ManyHosts(t *testing.T) {
	port, stop := listen(t)
	defer stop()

	var addrs []string
	for i := 1; i <= 20; i++ {
		addrs = append(addrs, "127.0.0."+strconv.Itoa(i))
	}
	before := OpenSockets()
	results := (Prober{}).ProbeAll(context.Background(), addrs, []int{port}, 200*time.Millisecond)
	if len(results) == 0 {
		t.Fatal("expected at least 127.0.0.1 to answer")
	}
	if after := OpenSockets(); after != before {
		t.Fatalf("socket leak: %d open before, %d after", before, after)
	}
}
