// Package failures is the error taxonomy shared by the voice pipeline.
//
// Every client returns plain Go errors; the kinds below are how the
// controller decides between a transient notice, an apology turn and a
// silent fallback.
package failures

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindDeviceUnavailable
	KindNoSpeechDetected
	KindServiceError
)

func (k Kind) String() string {
	switch k {
	case KindDeviceUnavailable:
		return "device_unavailable"
	case KindNoSpeechDetected:
		return "no_speech_detected"
	case KindServiceError:
		return "service_error"
	}
	return "unknown"
}

var (
	// ErrDeviceUnavailable means the capture device could not be opened,
	// either because access was denied or the hardware is busy.
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	// ErrNoSpeechDetected means audio was captured but nothing actionable
	// was recognized in it.
	ErrNoSpeechDetected = errors.New("no speech detected")
	// ErrServiceError matches every *ServiceError.
	ErrServiceError = errors.New("service error")
)

// ServiceError wraps a failed call to a remote service: transport errors,
// non-OK statuses and malformed responses alike.
type ServiceError struct {
	Service    string
	Op         string
	StatusCode int
	Err        error
}

// NewServiceError wraps err as a failure of service's op.
func NewServiceError(service, op string, err error) *ServiceError {
	return &ServiceError{Service: service, Op: op, Err: err}
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s: status %d: %v", e.Service, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Service, e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

func (e *ServiceError) Is(target error) bool { return target == ErrServiceError }

// DeviceUnavailable wraps err so it matches ErrDeviceUnavailable while
// keeping the device's own message.
func DeviceUnavailable(err error) error {
	if err == nil {
		return ErrDeviceUnavailable
	}
	return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
}

// KindOf classifies err. Unknown errors are reported as KindUnknown so
// callers can decide whether to treat them as service failures.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrDeviceUnavailable):
		return KindDeviceUnavailable
	case errors.Is(err, ErrNoSpeechDetected):
		return KindNoSpeechDetected
	case errors.Is(err, ErrServiceError):
		return KindServiceError
	}
	return KindUnknown
}
