package miniaudio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/ema-voice/core/audio"
)

// playbackClient opens a playback device per clip so each clip plays at its
// own sample rate.
type playbackClient struct {
	audioContext *malgo.AllocatedContext

	// mu serialises clips; a newer clip only starts once the previous Play
	// has returned.
	mu sync.Mutex
}

func (c *playbackClient) Play(ctx context.Context, clip *audio.Clip) error {
	if clip == nil || len(clip.PCM) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	encoding := clip.Encoding
	if encoding.IsZero() {
		encoding = audio.GetDefaultEncodingInfo()
	}
	channels := max(encoding.Channels, 1)
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels
	periodFrames := uint32(encoding.SampleRate / 10) // ~100ms of audio

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.SampleRate = uint32(encoding.SampleRate)
	config.Playback.Format = format
	config.Playback.Channels = uint32(channels)
	config.Alsa.NoMMap = 1
	config.PeriodSizeInFrames = periodFrames
	config.Periods = 4

	buffer := newClipBuffer(clip.PCM)
	device, err := malgo.InitDevice(c.audioContext.Context, config, malgo.DeviceCallbacks{
		Data: buffer.fill(bytesPerFrame),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	select {
	case <-buffer.drained:
	case <-ctx.Done():
		_ = device.Stop()
		return ctx.Err()
	}

	// the last period is still queued in the device when the buffer drains
	tail := time.NewTimer(encoding.Duration(int(periodFrames) * bytesPerFrame * int(config.Periods)))
	defer tail.Stop()
	select {
	case <-tail.C:
	case <-ctx.Done():
		_ = device.Stop()
		return ctx.Err()
	}

	if err := device.Stop(); err != nil {
		return fmt.Errorf("failed to stop playback device: %w", err)
	}
	return nil
}

type clipBuffer struct {
	mu        sync.Mutex
	remaining []byte

	drained     chan struct{}
	drainedOnce sync.Once
}

func newClipBuffer(pcm []byte) *clipBuffer {
	return &clipBuffer{remaining: pcm, drained: make(chan struct{})}
}

func (b *clipBuffer) fill(bytesPerFrame int) malgo.DataProc {
	return func(pOutput, _ []byte, frameCount uint32) {
		need := min(int(frameCount)*bytesPerFrame, len(pOutput))

		b.mu.Lock()
		n := copy(pOutput[:need], b.remaining)
		b.remaining = b.remaining[n:]
		empty := len(b.remaining) == 0
		b.mu.Unlock()

		clear(pOutput[n:need])
		if empty {
			b.drainedOnce.Do(func() { close(b.drained) })
		}
	}
}
