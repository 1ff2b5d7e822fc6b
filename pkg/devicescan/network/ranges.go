package network

import "fmt"

// Priority orders address tiers. High is scanned first.
type Priority int

const (
	PriorityHigh Priority = iota
	PriorityMedium
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// AddressRange is one tier of host addresses.
type AddressRange struct {
	Priority  Priority
	Addresses []string
}

type hostSpan struct{ first, last int }

// Gateways and DHCP pools usually live in the high tier.
var tierLayout = []struct {
	priority Priority
	spans    []hostSpan
}{
	{PriorityHigh, []hostSpan{{1, 50}, {100, 150}}},
	{PriorityMedium, []hostSpan{{51, 99}, {151, 200}}},
	{PriorityLow, []hostSpan{{201, 254}}},
}

// GenerateRanges splits the /24 around localIP into high, medium and low
// priority tiers covering host values 1-254 exactly once.
func GenerateRanges(localIP, subnetMask string) ([]AddressRange, error) {
	prefix, err := NetworkPrefix(localIP, subnetMask)
	if err != nil {
		return nil, err
	}

	ranges := make([]AddressRange, 0, len(tierLayout))
	for _, tier := range tierLayout {
		var addrs []string
		for _, span := range tier.spans {
			for host := span.first; host <= span.last; host++ {
				addrs = append(addrs, fmt.Sprintf("%s.%d", prefix, host))
			}
		}
		ranges = append(ranges, AddressRange{Priority: tier.priority, Addresses: addrs})
	}
	debugLog("generated %d tiers for %s.0/24", len(ranges), prefix)
	return ranges, nil
}
