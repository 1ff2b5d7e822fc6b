package devicescan

import (
	"fmt"
	"testing"

	"github.com/marcuoli/go-devicescan/pkg/devicescan/lan"
)

func TestDebugLog_Gating(t *testing.T) {
	oldLogger := debugLogger
	oldLevel := debugLevel
	defer func() {
		SetDebugLogger(oldLogger)
		SetDebugLevel(oldLevel)
	}()

	var calls []struct {
		component Component
		msg       string
	}

	SetDebugLogger(func(component Component, format string, args ...interface{}) {
		calls = append(calls, struct {
			component Component
			msg       string
		}{component: component, msg: format})
	})

	SetDebugLevel(DebugOff)
	debugLog(ComponentDNS, "a")
	debugLogVerbose(ComponentDNS, "b")
	if len(calls) != 0 {
		t.Fatalf("expected 0 calls with DebugOff, got %d", len(calls))
	}

	SetDebugLevel(DebugBasic)
	debugLog(ComponentDNS, "c")
	debugLogVerbose(ComponentDNS, "d")
	if len(calls) != 1 {
		t.Fatalf("expected 1 call with DebugBasic, got %d", len(calls))
	}
	if calls[0].component != ComponentDNS || calls[0].msg != "c" {
		t.Fatalf("unexpected call: %#v", calls[0])
	}

	SetDebugLevel(DebugVerbose)
	debugLogVerbose(ComponentProbe, "e")
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls with DebugVerbose, got %d", len(calls))
	}
	if calls[1].component != ComponentProbe || calls[1].msg != "e" {
		t.Fatalf("unexpected call: %#v", calls[1])
	}
}

func TestDebugLog_SubpackageFanOut(t *testing.T) {
	oldLogger := debugLogger
	oldLevel := debugLevel
	defer func() {
		SetDebugLogger(oldLogger)
		SetDebugLevel(oldLevel)
	}()

	var got []string
	SetDebugLogger(func(component Component, format string, args ...interface{}) {
		got = append(got, ComponentToPrefix(component)+" "+fmt.Sprintf(format, args...))
	})
	SetDebugLevel(DebugBasic)

	lan.DebugLogger("tier %d", 1)
	if len(got) != 1 || got[0] != "[Discovery:LAN] tier 1" {
		t.Fatalf("got %q", got)
	}
}

func TestParseDebugLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    DebugLevel
		wantErr bool
	}{
		{"", DebugOff, false},
		{"off", DebugOff, false},
		{"basic", DebugBasic, false},
		{"verbose", DebugVerbose, false},
		{"loud", DebugOff, true},
	}
	for _, tt := range tests {
		got, err := ParseDebugLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDebugLevel(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDebugLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComponentToPrefix_Unknown(t *testing.T) {
	if got := ComponentToPrefix("other"); got != LogPrefixDiscovery {
		t.Fatalf("got %q", got)
	}
}
