// Package texttospeech defines the two ways an answer can be rendered as
// speech: remotely synthesized audio clips and on-device synthesis.
package texttospeech

import (
	"context"

	"github.com/koscakluka/ema-voice/core/audio"
	"github.com/koscakluka/ema-voice/core/language"
)

// RemoteSynthesizer turns text into an audio clip over the network.
type RemoteSynthesizer interface {
	Synthesize(ctx context.Context, text string, opts ...TextToSpeechOption) (*audio.Clip, error)
}

// LocalSynthesizer speaks text on the device without any network access.
//
// Speak blocks until the text has been spoken. Cancelling ctx stops speech
// immediately and returns ctx.Err().
type LocalSynthesizer interface {
	Speak(ctx context.Context, text string, opts ...TextToSpeechOption) error
}

type TextToSpeechOptions struct {
	Language     language.Tag
	EncodingInfo audio.EncodingInfo
}

type TextToSpeechOption func(*TextToSpeechOptions)

// NewTextToSpeechOptions applies opts on top of the defaults.
func NewTextToSpeechOptions(opts ...TextToSpeechOption) TextToSpeechOptions {
	options := TextToSpeechOptions{
		Language:     language.English,
		EncodingInfo: audio.GetDefaultEncodingInfo(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func WithLanguage(tag language.Tag) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		if !tag.IsValid() {
			return
		}
		o.Language = tag
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		if encodingInfo.IsZero() {
			return
		}

		o.EncodingInfo = encodingInfo
	}
}
