// Package devicescan: Log prefix constants for consistent log tagging.
// These constants are exported so consumers can use them for consistent logging,
// but they are not required - consumers can use their own prefixes via SetDebugLogger.
package devicescan

// Log prefix constants for components.
// Format follows [Component] or [Component:Subcomponent] pattern.
const (
	// Main discovery prefix
	LogPrefixDiscovery = "[Discovery]"

	LogPrefixSession = "[Discovery:Session]"
	LogPrefixRadio   = "[Discovery:Radio]"
	LogPrefixLAN     = "[Discovery:LAN]"
	LogPrefixNetwork = "[Discovery:Network]"
	LogPrefixProbe   = "[Discovery:Probe]"
	LogPrefixARP     = "[Discovery:ARP]"
	LogPrefixDNS     = "[Discovery:DNS]"
	LogPrefixOUI     = "[Discovery:OUI]"
	LogPrefixSSDP    = "[Discovery:SSDP]"

	// Debug prefix - use as "[DEBUG][Discovery:*]" format
	LogPrefixDebug = "[DEBUG]"
)

// ComponentToPrefix returns the log prefix for a given component.
func ComponentToPrefix(component Component) string {
	switch component {
	case ComponentSession:
		return LogPrefixSession
	case ComponentRadio:
		return LogPrefixRadio
	case ComponentLAN:
		return LogPrefixLAN
	case ComponentNetwork:
		return LogPrefixNetwork
	case ComponentProbe:
		return LogPrefixProbe
	case ComponentARP:
		return LogPrefixARP
	case ComponentDNS:
		return LogPrefixDNS
	case ComponentOUI:
		return LogPrefixOUI
	case ComponentSSDP:
		return LogPrefixSSDP
	default:
		return LogPrefixDiscovery
	}
}
