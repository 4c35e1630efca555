package events

const (
	// KindCaptureStarted identifies the microphone being acquired.
	KindCaptureStarted Kind = "capture.started"
	// KindCaptureFinalized identifies the end of a recording.
	KindCaptureFinalized Kind = "capture.finalized"
)

// CaptureStarted marks the microphone being acquired.
type CaptureStarted struct{ Base }

// NewCaptureStarted creates a capture started event.
func NewCaptureStarted() CaptureStarted {
	return CaptureStarted{Base: NewBase(KindCaptureStarted)}
}

// CaptureFinalized carries the outcome of a recording.
type CaptureFinalized struct {
	Base
	Outcome string
	Bytes   int
}

// NewCaptureFinalized creates a capture finalized event.
func NewCaptureFinalized(outcome string, bytes int) CaptureFinalized {
	return CaptureFinalized{Base: NewBase(KindCaptureFinalized), Outcome: outcome, Bytes: bytes}
}
