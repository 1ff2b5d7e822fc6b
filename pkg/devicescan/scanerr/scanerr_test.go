package scanerr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestFailedError_IsScanFailed(t *testing.T) {
	cause := errors.New("sysctl: permission denied")
	err := Failed("read neighbor table", cause)

	if !errors.Is(err, ErrScanFailed) {
		t.Fatal("expected errors.Is(err, ErrScanFailed)")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected the cause to be unwrapped")
	}
	if !strings.Contains(err.Error(), "read neighbor table") {
		t.Errorf("reason missing from %q", err.Error())
	}
}

func TestFailedError_Wrapped(t *testing.T) {
	err := fmt.Errorf("lan: %w", Failed("save session", nil))

	var fe *FailedError
	if !errors.As(err, &fe) {
		t.Fatal("expected errors.As to find *FailedError")
	}
	if fe.Reason != "save session" {
		t.Errorf("Reason = %q, want %q", fe.Reason, "save session")
	}
	if got := fe.Error(); got != "scan failed: save session" {
		t.Errorf("Error() = %q", got)
	}
}

func TestIsStructural(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout", ErrScanTimeout, false},
		{"powered off", ErrRadioPoweredOff, true},
		{"network", fmt.Errorf("iface: %w", ErrNetworkUnavailable), true},
		{"double start", ErrScanAlreadyInProgress, true},
		{"failed", Failed("x", nil), true},
		{"other", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStructural(tt.err); got != tt.want {
				t.Errorf("IsStructural(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
