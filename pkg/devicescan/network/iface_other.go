//go:build !darwin && !linux

package network

const (
	// DefaultInterface is the adapter name Windows gives the built-in wireless card.
	DefaultInterface = "Wi-Fi"
	// WirelessPrefix matches the numbered names of additional cards ("Wi-Fi 2").
	WirelessPrefix = "Wi-Fi"
)
