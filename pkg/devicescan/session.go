package devicescan

import (
	"time"

	"github.com/google/uuid"
)

// Session is the record of one completed discovery run.
type Session struct {
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	DeviceCount int                `json:"device_count"`
	Devices     []DiscoveredDevice `json:"devices"`
}

// NewSession stamps devices with a fresh ID and the current time.
func NewSession(devices []DiscoveredDevice) Session {
	return Session{
		ID:          uuid.NewString(),
		Timestamp:   time.Now(),
		DeviceCount: len(devices),
		Devices:     devices,
	}
}

// RadioCount returns how many radio devices the session holds.
func (s Session) RadioCount() int {
	return s.count(CategoryRadio)
}

// IPCount returns how many IP devices the session holds.
func (s Session) IPCount() int {
	return s.count(CategoryIP)
}

func (s Session) count(c Category) int {
	n := 0
	for _, d := range s.Devices {
		if d.Category() == c {
			n++
		}
	}
	return n
}
