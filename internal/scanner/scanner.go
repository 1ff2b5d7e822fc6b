// Package scanner probes hosts for liveness with TCP connect attempts.
//
// A host is considered alive as soon as one port in the probe list accepts a
// connection; remaining ports are not tried. Every socket opened by a probe
// is closed before the probe returns.
package scanner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultPorts are the ports probed on each host, in order.
var DefaultPorts = []int{80, 443, 22, 445, 8080}

// DefaultTimeout bounds a single connection attempt.
const DefaultTimeout = 800 * time.Millisecond

// DebugLogger is a callback for debug logging.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Result describes a host that accepted a connection.
type Result struct {
	Address   string
	OpenPorts []int
	Elapsed   time.Duration
}

var openSockets atomic.Int64

// OpenSockets reports how many probe sockets are currently open.
func OpenSockets() int64 {
	return openSockets.Load()
}

// Probe tries each port on address in order and returns on the first open
// one. It returns nil when no port accepted a connection within timeout.
func Probe(ctx context.Context, address string, ports []int, timeout time.Duration) *Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	start := time.Now()
	for _, port := range ports {
		if ctx.Err() != nil {
			return nil
		}
		if connectPort(ctx, address, port, timeout) {
			elapsed := time.Since(start)
			debugLog("%s:%d open (%.2fms)", address, port, float64(elapsed.Microseconds())/1000)
			return &Result{Address: address, OpenPorts: []int{port}, Elapsed: elapsed}
		}
	}
	return nil
}

// ProbeAll probes every address concurrently and returns the live hosts in
// completion order.
func ProbeAll(ctx context.Context, addresses []string, ports []int, timeout time.Duration) []Result {
	if len(addresses) == 0 {
		return nil
	}

	results := make(chan *Result, len(addresses))
	var wg sync.WaitGroup
	for _, addr := range addresses {
		wg.Add(1)
		go func(a string) {
			defer wg.Done()
			results <- Probe(ctx, a, ports, timeout)
		}(addr)
	}
	wg.Wait()
	close(results)

	var up []Result
	for r := range results {
		if r != nil {
			up = append(up, *r)
		}
	}
	debugLog("probed %d hosts, %d alive", len(addresses), len(up))
	return up
}

// Prober adapts the package functions to an injectable dependency.
type Prober struct{}

// ProbeAll calls the package level ProbeAll.
func (Prober) ProbeAll(ctx context.Context, addresses []string, ports []int, timeout time.Duration) []Result {
	return ProbeAll(ctx, addresses, ports, timeout)
}
