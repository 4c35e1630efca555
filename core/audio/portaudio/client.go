// Package portaudio provides a microphone backed by PortAudio.
package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/koscakluka/ema-voice/core/audio"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/koscakluka/ema-voice/core/audio/portaudio"

var logger = otelslog.NewLogger(scopeName)

var ErrDeviceBusy = errors.New("capture device already open")

var _ audio.CaptureDevice = (*Client)(nil)

type Client struct {
	bufferSize int
	stream     *portaudio.Stream
	in         []int16

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewClient(bufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	in := make([]int16, bufferSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, audio.DefaultSampleRate, bufferSize, in)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to open portaudio stream: %w", err)
	}

	return &Client{bufferSize: bufferSize, stream: stream, in: in}, nil
}

func (c *Client) Open(ctx context.Context, onChunk func(chunk []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		return ErrDeviceBusy
	}

	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start portaudio stream: %w", err)
	}

	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.read(ctx, c.stop, c.done, onChunk)
	return nil
}

func (c *Client) read(ctx context.Context, stop, done chan struct{}, onChunk func(chunk []byte)) {
	defer close(done)

	audioBuffer := bytes.Buffer{}
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		if err := c.stream.Read(); err != nil {
			logger.Warn("failed to read from portaudio stream", "error", err)
			continue
		}

		audioBuffer.Reset()
		_ = binary.Write(&audioBuffer, binary.LittleEndian, c.in)
		onChunk(audioBuffer.Bytes())
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop == nil {
		return nil
	}

	close(c.stop)
	<-c.done
	c.stop, c.done = nil, nil

	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop portaudio stream: %w", err)
	}
	return nil
}

// Shutdown closes the stream and terminates PortAudio.
func (c *Client) Shutdown() {
	_ = c.Close()
	_ = c.stream.Close()
	_ = portaudio.Terminate()
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{
		SampleRate: audio.DefaultSampleRate,
		Channels:   1,
		Format:     audio.EncodingLinear16,
	}
}
