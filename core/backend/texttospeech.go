package backend

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/koscakluka/ema-voice/core/audio"
	"github.com/koscakluka/ema-voice/core/failures"
	"github.com/koscakluka/ema-voice/core/texttospeech"
)

type synthesizeRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

type synthesizeResponse struct {
	AudioBase64 string `json:"audio_base64"`
}

// Synthesize renders text through POST /tts. The backend answers with a
// base64 WAV file.
func (c *Client) Synthesize(ctx context.Context, text string, opts ...texttospeech.TextToSpeechOption) (*audio.Clip, error) {
	options := texttospeech.NewTextToSpeechOptions(opts...)

	var response synthesizeResponse
	err := c.post(ctx, "tts", "/tts", synthesizeRequest{
		Text: text,
		Lang: options.Language.String(),
	}, &response)
	if err != nil {
		return nil, err
	}

	if response.AudioBase64 == "" {
		return nil, failures.NewServiceError(serviceName, "tts", errors.New("empty audio"))
	}
	data, err := base64.StdEncoding.DecodeString(response.AudioBase64)
	if err != nil {
		return nil, failures.NewServiceError(serviceName, "tts", fmt.Errorf("error decoding audio: %w", err))
	}
	clip, err := audio.DecodeWAV(data)
	if err != nil {
		return nil, failures.NewServiceError(serviceName, "tts", err)
	}
	return clip, nil
}
