// Package dns resolves IPv4 addresses to host names.
//
// A Resolver asks each of its sources in turn (system PTR, mDNS, LLMNR,
// NetBIOS node status) until one answers. Batches run concurrently with a
// bounded number of lookups in flight.
package dns

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// DefaultTimeout bounds one address lookup across all sources.
const DefaultTimeout = 2 * time.Second

// DefaultWorkers is the default number of concurrent lookups.
const DefaultWorkers = 64

// ErrNoAnswer is returned when no source produced a name.
var ErrNoAnswer = errors.New("no name found")

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from name lookups.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Source is one way of turning an address into a name.
type Source interface {
	Name() string
	LookupAddr(ctx context.Context, ip string) (string, error)
}

// Resolver tries its sources in order for each address.
type Resolver struct {
	Timeout time.Duration
	Workers int
	Sources []Source
}

// NewResolver returns a resolver that only uses the system resolver.
func NewResolver() *Resolver {
	return &Resolver{
		Timeout: DefaultTimeout,
		Workers: DefaultWorkers,
		Sources: []Source{NewSystem()},
	}
}

// LookupAddr returns the first name any source reports for ip.
func (r *Resolver) LookupAddr(ctx context.Context, ip string) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return r.lookup(ctx, ip, timeout)
}

func (r *Resolver) lookup(ctx context.Context, ip string, timeout time.Duration) (string, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for _, src := range r.Sources {
		if lookupCtx.Err() != nil {
			return "", lookupCtx.Err()
		}
		name, err := src.LookupAddr(lookupCtx, ip)
		if err != nil {
			debugLog("%s: %s: %v", ip, src.Name(), err)
			continue
		}
		if name = cleanName(name); name != "" {
			debugLog("%s -> %s (%s)", ip, name, src.Name())
			return name, nil
		}
	}
	return "", ErrNoAnswer
}

// ResolveMany looks up every address concurrently, each bounded by timeout,
// and returns the names found keyed by IP. Addresses that fail are absent.
func (r *Resolver) ResolveMany(ctx context.Context, ips []string, timeout time.Duration) map[string]string {
	names := make(map[string]string)
	if len(ips) == 0 {
		return names
	}
	if timeout <= 0 {
		timeout = r.Timeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	workers := r.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = semaphore.NewWeighted(int64(workers))
	)
	for _, ip := range ips {
		wg.Add(1)
		go func(addr string) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			name, err := r.lookup(ctx, addr, timeout)
			if err != nil {
				return
			}
			mu.Lock()
			names[addr] = name
			mu.Unlock()
		}(ip)
	}
	wg.Wait()

	debugLog("resolved %d/%d names", len(names), len(ips))
	return names
}

func cleanName(name string) string {
	return strings.TrimSuffix(strings.TrimSpace(name), ".")
}
