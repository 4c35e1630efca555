package orchestration

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/koscakluka/ema-voice/core/audio"
	"github.com/koscakluka/ema-voice/core/failures"
)

func TestCaptureSessionCopiesChunksInOrder(t *testing.T) {
	device := &fakeCaptureDevice{}
	session := newCaptureSession(device, 4, time.Second, nil)

	if err := session.begin(context.Background()); err != nil {
		t.Fatalf("expected capture to begin, got %v", err)
	}

	chunk := []byte{1, 2, 3}
	device.feed(chunk)
	chunk[0] = 9
	device.feed([]byte{4, 5})

	episode, payload := session.end()
	if episode.Outcome != OutcomeWithAudio {
		t.Fatalf("expected %q, got %q", OutcomeWithAudio, episode.Outcome)
	}
	if episode.Size() != 5 {
		t.Fatalf("expected 5 bytes, got %d", episode.Size())
	}

	clip, err := audio.DecodeWAV(payload.Data)
	if err != nil {
		t.Fatalf("expected payload to be a wav file, got %v", err)
	}
	expected := []byte{1, 2, 3, 4, 5}
	if string(clip.PCM) != string(expected) {
		t.Fatalf("expected pcm %v, got %v", expected, clip.PCM)
	}
}

func TestCaptureSessionBelowMinimumIsEmpty(t *testing.T) {
	device := &fakeCaptureDevice{chunks: [][]byte{{1, 2, 3}}}
	session := newCaptureSession(device, 4, time.Second, nil)

	if err := session.begin(context.Background()); err != nil {
		t.Fatalf("expected capture to begin, got %v", err)
	}

	episode, payload := session.end()
	if episode.Outcome != OutcomeEmpty {
		t.Fatalf("expected %q, got %q", OutcomeEmpty, episode.Outcome)
	}
	if !payload.IsEmpty() {
		t.Fatalf("expected no payload for empty capture")
	}
}

func TestCaptureSessionIgnoresChunksAfterEnd(t *testing.T) {
	device := &fakeCaptureDevice{}
	session := newCaptureSession(device, 1, time.Second, nil)

	if err := session.begin(context.Background()); err != nil {
		t.Fatalf("expected capture to begin, got %v", err)
	}
	onChunk := device.onChunk
	session.end()
	onChunk([]byte{1})

	episode, _ := session.end()
	if episode.Size() != 0 {
		t.Fatalf("expected late chunks to be dropped, got %d bytes", episode.Size())
	}
	if _, closes := device.counts(); closes != 1 {
		t.Fatalf("expected repeated end to release once, got %d", closes)
	}
}

func TestCaptureSessionReleasesDeviceOpenedAfterEnd(t *testing.T) {
	device := &fakeCaptureDevice{openGate: make(chan struct{})}
	session := newCaptureSession(device, 1, time.Second, nil)

	began := make(chan error, 1)
	go func() { began <- session.begin(context.Background()) }()
	waitFor(t, "device open to start", func() bool {
		opens, _ := device.counts()
		return opens == 1
	})

	session.end()
	close(device.openGate)

	if err := <-began; err != nil {
		t.Fatalf("expected late open to succeed, got %v", err)
	}
	if _, closes := device.counts(); closes != 1 {
		t.Fatalf("expected device opened after end to be released once, got %d", closes)
	}
}

func TestCaptureSessionOpenFailureIsDenied(t *testing.T) {
	device := &fakeCaptureDevice{openErr: errors.New("device busy")}
	session := newCaptureSession(device, 1, time.Second, nil)

	err := session.begin(context.Background())
	if !errors.Is(err, failures.ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}

	episode, _ := session.end()
	if episode.Outcome != OutcomeDenied {
		t.Fatalf("expected %q, got %q", OutcomeDenied, episode.Outcome)
	}
	if _, closes := device.counts(); closes != 0 {
		t.Fatalf("expected failed device not to be released, got %d", closes)
	}
}

func TestCaptureSessionWithoutDeviceIsDenied(t *testing.T) {
	session := newCaptureSession(nil, 1, time.Second, nil)

	if err := session.begin(context.Background()); !errors.Is(err, failures.ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}
}

func TestCaptureSessionSignalsMaxDuration(t *testing.T) {
	var fired atomic.Int32
	session := newCaptureSession(&fakeCaptureDevice{}, 1, 10*time.Millisecond, func() { fired.Add(1) })

	if err := session.begin(context.Background()); err != nil {
		t.Fatalf("expected capture to begin, got %v", err)
	}
	waitFor(t, "max duration", func() bool { return fired.Load() == 1 })
}
