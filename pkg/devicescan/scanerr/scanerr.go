// Package scanerr defines the errors shared by the radio scanner, the IP
// discovery service and the session coordinator.
//
// Structural failures (radio not ready, no active interface, double start,
// persistence failure) are returned as one of the sentinels below or as a
// *FailedError. Per-host failures never surface as errors; the affected host
// is simply absent from the results.
package scanerr

import (
	"errors"
	"fmt"
)

var (
	// ErrRadioUnavailable is returned when the radio stack is unsupported or in an unknown state.
	ErrRadioUnavailable = errors.New("radio is not available on this device")
	// ErrRadioUnauthorized is returned when the process may not use the radio.
	ErrRadioUnauthorized = errors.New("radio access is not authorized")
	// ErrRadioPoweredOff is returned when the radio is switched off.
	ErrRadioPoweredOff = errors.New("radio is powered off")
	// ErrNetworkUnavailable is returned when no usable IPv4 interface is found.
	ErrNetworkUnavailable = errors.New("network is unavailable for scanning")
	// ErrScanTimeout is returned when a scan timed out without finding anything.
	ErrScanTimeout = errors.New("scan timed out without finding devices")
	// ErrScanAlreadyInProgress is returned when a scan is started while another one runs.
	ErrScanAlreadyInProgress = errors.New("scan already in progress")
	// ErrScanFailed matches every *FailedError through errors.Is.
	ErrScanFailed = errors.New("scan failed")
)

// FailedError reports a structural failure with a human readable reason.
type FailedError struct {
	Reason string
	Err    error
}

// Failed wraps err as a scan failure with the given reason.
func Failed(reason string, err error) *FailedError {
	return &FailedError{Reason: reason, Err: err}
}

func (e *FailedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("scan failed: %s", e.Reason)
	}
	return fmt.Sprintf("scan failed: %s: %v", e.Reason, e.Err)
}

func (e *FailedError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrScanFailed) true for every FailedError.
func (e *FailedError) Is(target error) bool {
	return target == ErrScanFailed
}

// IsStructural reports whether err must abort a whole scan session.
func IsStructural(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrRadioUnavailable),
		errors.Is(err, ErrRadioUnauthorized),
		errors.Is(err, ErrRadioPoweredOff),
		errors.Is(err, ErrNetworkUnavailable),
		errors.Is(err, ErrScanAlreadyInProgress),
		errors.Is(err, ErrScanFailed):
		return true
	}
	return false
}
