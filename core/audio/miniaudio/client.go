// Package miniaudio provides a microphone and a clip player backed by
// miniaudio through malgo.
package miniaudio

import (
	"context"
	"fmt"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/ema-voice/core/audio"
)

var (
	_ audio.CaptureDevice = (*Client)(nil)
	_ audio.ClipPlayer    = (*Client)(nil)
)

type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext
	playbackClient
	captureClient
}

func NewClient() (*Client, error) {
	audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		logger.Debug("malgo", "message", message)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	client := Client{audioContext: audioCtx}
	client.playbackClient.audioContext = audioCtx

	if err := client.captureClient.Init(audioCtx); err != nil {
		client.Shutdown()
		return nil, fmt.Errorf("failed to initialize capture client: %w", err)
	}

	return &client, nil
}

func (c *Client) Open(_ context.Context, onChunk func(chunk []byte)) error {
	return c.captureClient.Start(onChunk)
}

func (c *Client) Close() error {
	return c.captureClient.Stop()
}

func (c *Client) Play(ctx context.Context, clip *audio.Clip) error {
	return c.playbackClient.Play(ctx, clip)
}

// Shutdown releases every device and the audio context. The client cannot be
// used afterwards.
func (c *Client) Shutdown() {
	_ = c.captureClient.Uninit()
	_ = c.audioContext.Uninit()
	c.audioContext.Free()
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}
