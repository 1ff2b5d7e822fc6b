// Package oui resolves hardware addresses to vendor names using an IEEE OUI
// database file.
package oui

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/klauspost/oui"
)

// ErrNoDatabase is returned by Open when no database path is configured.
var ErrNoDatabase = errors.New("no OUI database configured")

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from OUI operations.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// VendorInfo contains information about a MAC address vendor.
type VendorInfo struct {
	Manufacturer string
	Address      []string
	Country      string
	Prefix       string
}

type querier interface {
	Query(string) (*oui.Entry, error)
}

// DB is a loaded OUI database. A nil *DB answers every lookup with no vendor.
type DB struct {
	path string
	q    querier
}

// Open loads the IEEE OUI file at path.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, ErrNoDatabase
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("OUI database %s: %w", path, err)
	}
	db, err := oui.OpenStaticFile(path)
	if err != nil {
		return nil, fmt.Errorf("open OUI database: %w", err)
	}
	debugLog("OUI database loaded from %s", path)
	return &DB{path: path, q: db}, nil
}

// Path returns the file the database was loaded from.
func (d *DB) Path() string {
	if d == nil {
		return ""
	}
	return d.path
}

// Lookup returns the vendor for mac. Unknown prefixes return nil, nil.
// The MAC address can be in various formats: "00:11:22:33:44:55", "00-11-22-33-44-55", "001122334455"
func (d *DB) Lookup(mac string) (*VendorInfo, error) {
	if d == nil || d.q == nil {
		return nil, ErrNoDatabase
	}

	norm := NormalizeMAC(mac)
	if norm == "" {
		return nil, fmt.Errorf("invalid MAC address format: %q", mac)
	}
	hw, err := net.ParseMAC(norm)
	if err != nil {
		return nil, fmt.Errorf("failed to parse MAC address: %w", err)
	}

	entry, err := d.q.Query(hw.String())
	if err != nil {
		if errors.Is(err, oui.ErrNotFound) {
			debugLog("%s: vendor not found in database", norm)
			return nil, nil
		}
		return nil, fmt.Errorf("OUI lookup failed: %w", err)
	}

	vendor := &VendorInfo{
		Manufacturer: entry.Manufacturer,
		Prefix:       entry.Prefix.String(),
		Country:      entry.Country,
	}
	if len(entry.Address) > 0 {
		vendor.Address = entry.Address
	}
	debugLog("%s -> %s", norm, vendor.Manufacturer)
	return vendor, nil
}

// LookupName returns just the manufacturer name, or "" when unknown.
func (d *DB) LookupName(mac string) string {
	vendor, err := d.Lookup(mac)
	if err != nil || vendor == nil {
		return ""
	}
	return vendor.Manufacturer
}

// NormalizeMAC normalizes various MAC address formats to standard format.
// Returns empty string if invalid.
func NormalizeMAC(mac string) string {
	mac = strings.ToLower(mac)
	mac = strings.NewReplacer("-", "", ":", "", ".", "").Replace(mac)

	if len(mac) != 12 {
		return ""
	}
	for _, c := range mac {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return ""
		}
	}

	return fmt.Sprintf("%s:%s:%s:%s:%s:%s",
		mac[0:2], mac[2:4], mac[4:6], mac[6:8], mac[8:10], mac[10:12])
}
