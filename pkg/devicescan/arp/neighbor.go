// Package arp reads the operating system's neighbor (ARP) table and, where
// privileges allow, sends active ARP requests.
//
// The neighbor table is a point-in-time snapshot: entries appear for hosts
// the machine has recently exchanged traffic with, so reading it right after
// a probe sweep yields hardware addresses for most live hosts.
package arp

import (
	"errors"
	"net"

	"github.com/marcuoli/go-devicescan/pkg/devicescan/scanerr"
)

var (
	// ErrNotSupported is returned on platforms without a neighbor table reader.
	ErrNotSupported = errors.New("neighbor table is not supported on this platform")
	// ErrInvalidIP is returned when an invalid IP address is provided.
	ErrInvalidIP = errors.New("invalid IP address")
	// ErrIPv6NotSupported is returned when attempting ARP on an IPv6 address.
	ErrIPv6NotSupported = errors.New("ARP is not supported for IPv6 addresses")
)

// DebugLogger is a callback for debug logging.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Entry maps an IPv4 address to the hardware address the kernel learned.
type Entry struct {
	IPAddress       string
	HardwareAddress string
}

// ReadTable returns the current IPv4 neighbor table. Any failure to fetch
// it is reported as a scan failure; malformed records are skipped.
func ReadTable() ([]Entry, error) {
	entries, err := fetchTable()
	if err != nil {
		return nil, scanerr.Failed("read neighbor table", err)
	}
	debugLog("neighbor table: %d entries", len(entries))
	return entries, nil
}

// Table adapts ReadTable to an injectable dependency.
type Table struct{}

// ReadTable calls the package level ReadTable.
func (Table) ReadTable() ([]Entry, error) {
	return ReadTable()
}

// Map indexes entries by IP address; later entries win.
func Map(entries []Entry) map[string]string {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.IPAddress] = e.HardwareAddress
	}
	return m
}

const hwAddrLen = 6

func formatHardwareAddr(b []byte) string {
	return net.HardwareAddr(b).String()
}

func align4(n int) int {
	return (n + 3) &^ 3
}
