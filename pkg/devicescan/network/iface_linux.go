package network

const (
	// DefaultInterface is the conventional name of the first wireless interface.
	DefaultInterface = "wlan0"
	// WirelessPrefix matches systemd predictable names such as wlp3s0.
	WirelessPrefix = "wl"
)
