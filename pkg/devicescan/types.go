// Package devicescan discovers devices around the host: nearby radio
// peripherals and hosts on the local IPv4 subnet. A Coordinator runs both
// scans in parallel and records the merged result as a Session.
package devicescan

import (
	"time"

	"github.com/marcuoli/go-devicescan/pkg/devicescan/lan"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/radio"
)

// Component identifies the part of the library that produced a log message.
type Component string

const (
	ComponentSession Component = "session"
	ComponentRadio   Component = "radio"
	ComponentLAN     Component = "lan"
	ComponentNetwork Component = "network"
	ComponentProbe   Component = "probe"
	ComponentARP     Component = "arp"
	ComponentDNS     Component = "dns"
	ComponentOUI     Component = "oui"
	ComponentSSDP    Component = "ssdp"
)

// Category tells which scanner found a device.
type Category string

const (
	CategoryRadio Category = "radio"
	CategoryIP    Category = "ip"
)

// RadioDevice is a peripheral seen advertising over the radio.
type RadioDevice = radio.Device

// IPDevice is a host that answered on the local subnet.
type IPDevice = lan.Device

// DiscoveredDevice holds exactly one of a radio or an IP device.
type DiscoveredDevice struct {
	Radio *RadioDevice `json:"radio,omitempty"`
	IP    *IPDevice    `json:"ip,omitempty"`
}

// FromRadio wraps a radio device.
func FromRadio(d RadioDevice) DiscoveredDevice {
	return DiscoveredDevice{Radio: &d}
}

// FromIP wraps an IP device.
func FromIP(d IPDevice) DiscoveredDevice {
	return DiscoveredDevice{IP: &d}
}

// Valid reports whether exactly one variant is set.
func (d DiscoveredDevice) Valid() bool {
	return (d.Radio == nil) != (d.IP == nil)
}

// ID returns the radio identifier or the IP device's generated ID.
func (d DiscoveredDevice) ID() string {
	switch {
	case d.Radio != nil:
		return d.Radio.ID
	case d.IP != nil:
		return d.IP.ID
	}
	return ""
}

// Name returns a display name. Radio devices without an advertised name
// fall back to their identifier; IP devices already fall back to the address.
func (d DiscoveredDevice) Name() string {
	switch {
	case d.Radio != nil:
		if d.Radio.Name != "" {
			return d.Radio.Name
		}
		return d.Radio.ID
	case d.IP != nil:
		return d.IP.Name
	}
	return ""
}

// Category returns CategoryRadio or CategoryIP, or "" for a zero value.
func (d DiscoveredDevice) Category() Category {
	switch {
	case d.Radio != nil:
		return CategoryRadio
	case d.IP != nil:
		return CategoryIP
	}
	return ""
}

// DiscoveredAt returns when the device was first seen.
func (d DiscoveredDevice) DiscoveredAt() time.Time {
	switch {
	case d.Radio != nil:
		return d.Radio.DiscoveredAt
	case d.IP != nil:
		return d.IP.DiscoveredAt
	}
	return time.Time{}
}
