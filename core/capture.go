package orchestration

import (
	"context"
	"sync"
	"time"

	"github.com/koscakluka/ema-voice/core/audio"
	"github.com/koscakluka/ema-voice/core/failures"
)

const (
	DefaultMinViableBytes = 1000
	DefaultMaxDuration    = 15 * time.Second
)

// Outcome is how a capture episode ended.
type Outcome string

const (
	OutcomePending   Outcome = ""
	OutcomeWithAudio Outcome = "finalized-with-audio"
	OutcomeEmpty     Outcome = "finalized-empty"
	OutcomeDenied    Outcome = "denied"
)

// Episode is one recording from microphone acquisition to finalization.
type Episode struct {
	StartedAt time.Time
	Chunks    [][]byte
	Outcome   Outcome
}

// Size is the total number of captured bytes.
func (e Episode) Size() int {
	size := 0
	for _, chunk := range e.Chunks {
		size += len(chunk)
	}
	return size
}

// captureSession owns the capture device for a single episode. The device
// is acquired at most once and released exactly once after a successful
// acquisition, whichever of end, timeout or abort comes first.
type captureSession struct {
	device         audio.CaptureDevice
	minViableBytes int
	maxDuration    time.Duration
	onMaxDuration  func()

	mu       sync.Mutex
	episode  Episode
	acquired bool
	ended    bool
	timer    *time.Timer

	releaseOnce sync.Once
}

func newCaptureSession(device audio.CaptureDevice, minViableBytes int, maxDuration time.Duration, onMaxDuration func()) *captureSession {
	if onMaxDuration == nil {
		onMaxDuration = func() {}
	}

	return &captureSession{
		device:         device,
		minViableBytes: minViableBytes,
		maxDuration:    maxDuration,
		onMaxDuration:  onMaxDuration,
	}
}

// begin acquires the device and starts recording. It blocks for as long as
// the device takes to open. A failed open is reported as
// failures.ErrDeviceUnavailable and finalizes the episode as denied.
func (s *captureSession) begin(ctx context.Context) error {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return nil
	}
	s.episode.StartedAt = time.Now()
	if s.maxDuration > 0 {
		s.timer = time.AfterFunc(s.maxDuration, s.onMaxDuration)
	}
	s.mu.Unlock()

	err := errNoCaptureDevice
	if s.device != nil {
		err = s.device.Open(ctx, s.append)
	}

	s.mu.Lock()
	if err != nil {
		s.stopTimer()
		if !s.ended {
			s.ended = true
			s.episode.Outcome = OutcomeDenied
		}
		s.mu.Unlock()
		return failures.DeviceUnavailable(err)
	}

	s.acquired = true
	endedWhileOpening := s.ended
	s.mu.Unlock()

	if endedWhileOpening {
		s.release()
	}
	return nil
}

func (s *captureSession) append(chunk []byte) {
	if len(chunk) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return
	}

	s.episode.Chunks = append(s.episode.Chunks, append([]byte(nil), chunk...))
}

// end stops recording, releases the device and finalizes the episode. The
// payload is only populated for finalized-with-audio outcomes. Calling end
// again returns the already finalized episode.
func (s *captureSession) end() (Episode, audio.Payload) {
	s.mu.Lock()
	if s.ended {
		episode := s.episode
		s.mu.Unlock()
		return episode, audio.Payload{}
	}

	s.ended = true
	s.stopTimer()
	acquired := s.acquired

	if s.episode.Size() < s.minViableBytes {
		s.episode.Outcome = OutcomeEmpty
	} else {
		s.episode.Outcome = OutcomeWithAudio
	}
	episode := s.episode
	s.mu.Unlock()

	if acquired {
		s.release()
	}

	if episode.Outcome != OutcomeWithAudio {
		return episode, audio.Payload{}
	}
	return episode, s.payload(episode)
}

func (s *captureSession) isActive() bool {
	if s == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.ended
}

func (s *captureSession) payload(episode Episode) audio.Payload {
	encoding := audio.GetDefaultEncodingInfo()
	if s.device != nil && !s.device.EncodingInfo().IsZero() {
		encoding = s.device.EncodingInfo()
	}

	pcm := make([]byte, 0, episode.Size())
	for _, chunk := range episode.Chunks {
		pcm = append(pcm, chunk...)
	}

	return audio.Payload{
		Data:        audio.EncodeWAV(pcm, encoding),
		ContentType: audio.ContentTypeWAV,
		Encoding:    encoding,
	}
}

func (s *captureSession) release() {
	s.releaseOnce.Do(func() {
		if err := s.device.Close(); err != nil {
			logger.Warn("failed to release capture device", "error", err)
		}
	})
}

// stopTimer must be called with mu held.
func (s *captureSession) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
	}
}
