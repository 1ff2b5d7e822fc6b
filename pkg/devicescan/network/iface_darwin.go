package network

const (
	// DefaultInterface is the primary Wi-Fi interface on macOS and iOS.
	DefaultInterface = "en0"
	WirelessPrefix   = "en"
)
