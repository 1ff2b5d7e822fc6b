// Package devicescan: Debug logging support.
package devicescan

import (
	"fmt"
	"sync"

	"github.com/marcuoli/go-devicescan/internal/scanner"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/arp"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/dns"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/lan"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/network"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/oui"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/radio"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/ssdp"
)

// DebugLevel represents the verbosity level for debug logging.
type DebugLevel int

const (
	// DebugOff disables all debug logging.
	DebugOff DebugLevel = iota
	// DebugBasic logs high-level operations (start/complete/errors).
	DebugBasic
	// DebugVerbose also logs per-host probe results.
	DebugVerbose
)

// DebugLogger is a callback function for debug logging.
// The component parameter indicates which part of the library generated the message.
type DebugLogger func(component Component, format string, args ...interface{})

var (
	debugLogger DebugLogger
	debugLevel  DebugLevel
	debugMu     sync.RWMutex
)

func init() {
	network.DebugLogger = func(format string, args ...interface{}) {
		debugLog(ComponentNetwork, format, args...)
	}
	scanner.DebugLogger = func(format string, args ...interface{}) {
		debugLogVerbose(ComponentProbe, format, args...)
	}
	arp.DebugLogger = func(format string, args ...interface{}) {
		debugLog(ComponentARP, format, args...)
	}
	dns.DebugLogger = func(format string, args ...interface{}) {
		debugLogVerbose(ComponentDNS, format, args...)
	}
	oui.DebugLogger = func(format string, args ...interface{}) {
		debugLog(ComponentOUI, format, args...)
	}
	ssdp.DebugLogger = func(format string, args ...interface{}) {
		debugLog(ComponentSSDP, format, args...)
	}
	radio.DebugLogger = func(format string, args ...interface{}) {
		debugLog(ComponentRadio, format, args...)
	}
	lan.DebugLogger = func(format string, args ...interface{}) {
		debugLog(ComponentLAN, format, args...)
	}
}

// SetDebugLogger sets a custom debug logger callback.
// Pass nil to disable debug logging.
func SetDebugLogger(logger DebugLogger) {
	debugMu.Lock()
	defer debugMu.Unlock()
	debugLogger = logger
}

// SetDebugLevel sets the debug verbosity level.
func SetDebugLevel(level DebugLevel) {
	debugMu.Lock()
	defer debugMu.Unlock()
	debugLevel = level
}

// ParseDebugLevel maps "off", "basic" and "verbose" to a level.
func ParseDebugLevel(s string) (DebugLevel, error) {
	switch s {
	case "", "off", "none":
		return DebugOff, nil
	case "basic", "info":
		return DebugBasic, nil
	case "verbose", "debug":
		return DebugVerbose, nil
	}
	return DebugOff, fmt.Errorf("unknown debug level %q", s)
}

// debugLog logs a message if debug logging is enabled.
func debugLog(component Component, format string, args ...interface{}) {
	debugMu.RLock()
	logger := debugLogger
	level := debugLevel
	debugMu.RUnlock()

	if logger != nil && level >= DebugBasic {
		logger(component, format, args...)
	}
}

// debugLogVerbose logs a verbose message if verbose debug logging is enabled.
func debugLogVerbose(component Component, format string, args ...interface{}) {
	debugMu.RLock()
	logger := debugLogger
	level := debugLevel
	debugMu.RUnlock()

	if logger != nil && level >= DebugVerbose {
		logger(component, format, args...)
	}
}

