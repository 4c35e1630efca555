package backend

import (
	"context"
	"strings"

	"github.com/koscakluka/ema-voice/core/audio"
	"github.com/koscakluka/ema-voice/core/failures"
	"github.com/koscakluka/ema-voice/core/speechtotext"
)

type transcribeRequest struct {
	AudioBase64 string `json:"audio_base64"`
	Lang        string `json:"lang"`
}

type transcribeResponse struct {
	Transcript string `json:"transcript"`
}

// Transcribe sends a finalized recording to POST /stt.
func (c *Client) Transcribe(ctx context.Context, payload audio.Payload, opts ...speechtotext.TranscriptionOption) (string, error) {
	options := speechtotext.NewTranscriptionOptions(opts...)

	var response transcribeResponse
	err := c.post(ctx, "stt", "/stt", transcribeRequest{
		AudioBase64: payload.Base64(),
		Lang:        options.Language.String(),
	}, &response)
	if err != nil {
		return "", err
	}

	transcript := strings.TrimSpace(response.Transcript)
	if transcript == "" {
		return "", failures.ErrNoSpeechDetected
	}
	logger.Debug("transcription complete", "text_length", len(transcript), "language", options.Language.String())
	return transcript, nil
}
