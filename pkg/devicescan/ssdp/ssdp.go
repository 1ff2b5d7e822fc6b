// Package ssdp finds UPnP devices with an SSDP M-SEARCH and reports the
// Server header each one announces. Smart TVs, media players, routers and
// NAS boxes usually answer, which makes the header a cheap description of
// what sits behind an address.
package ssdp

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	gossdp "github.com/koron/go-ssdp"
)

// DebugLogger is the callback function for debug logging.
// Set this to enable debug output for SSDP operations.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// DefaultTimeout is how long a search waits for answers.
const DefaultTimeout = 2 * time.Second

// Common search targets.
const (
	All        = gossdp.All        // "ssdp:all"
	RootDevice = gossdp.RootDevice // "upnp:rootdevice"
)

// Result is one answer to an M-SEARCH.
type Result struct {
	IP       string
	Location string // URL to device description XML
	Server   string // Server header (OS/device info)
	USN      string // Unique Service Name
	ST       string // Search Target (device type)
}

type searchFunc func(target string, waitSec int) ([]gossdp.Service, error)

func defaultSearch(target string, waitSec int) ([]gossdp.Service, error) {
	return gossdp.Search(target, waitSec, "")
}

// Discovery performs SSDP searches.
type Discovery struct {
	Timeout time.Duration

	search searchFunc
}

// NewDiscovery creates an SSDP discovery helper with defaults.
func NewDiscovery() *Discovery {
	return &Discovery{Timeout: DefaultTimeout}
}

// Discover sends one M-SEARCH for target ("" means All) and collects the
// answers that arrive within Timeout.
func (s *Discovery) Discover(ctx context.Context, target string) ([]Result, error) {
	if target == "" {
		target = All
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	waitSec := int(s.Timeout.Seconds())
	if waitSec < 1 {
		waitSec = 1
	}
	search := s.search
	if search == nil {
		search = defaultSearch
	}
	debugLog("M-SEARCH target=%s wait=%ds", target, waitSec)

	type reply struct {
		services []gossdp.Service
		err      error
	}
	replies := make(chan reply, 1)
	go func() {
		services, err := search(target, waitSec)
		replies <- reply{services, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-replies:
		if r.err != nil {
			return nil, fmt.Errorf("SSDP search: %w", r.err)
		}
		results := convertServices(r.services)
		debugLog("M-SEARCH found %d answers", len(results))
		return results, nil
	}
}

// Servers runs one search and maps each responding IP to the first
// non-empty Server header it announced.
func (s *Discovery) Servers(ctx context.Context) (map[string]string, error) {
	results, err := s.Discover(ctx, All)
	if err != nil {
		return nil, err
	}
	servers := make(map[string]string)
	for _, r := range results {
		if r.IP == "" || r.Server == "" {
			continue
		}
		if _, ok := servers[r.IP]; !ok {
			servers[r.IP] = r.Server
		}
	}
	return servers, nil
}

func convertServices(services []gossdp.Service) []Result {
	results := make([]Result, 0, len(services))
	for _, svc := range services {
		results = append(results, Result{
			IP:       extractIPFromURL(svc.Location),
			Location: svc.Location,
			Server:   strings.TrimSpace(svc.Server),
			USN:      svc.USN,
			ST:       svc.Type,
		})
	}
	return results
}

// extractIPFromURL extracts the IP address from a URL like "http://192.168.1.1:8080/desc.xml"
func extractIPFromURL(url string) string {
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "https://")

	if idx := strings.Index(url, "/"); idx > 0 {
		url = url[:idx]
	}

	host, _, err := net.SplitHostPort(url)
	if err != nil {
		host = url
	}
	if ip := net.ParseIP(host); ip != nil {
		return host
	}
	return ""
}
