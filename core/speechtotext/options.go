// Package speechtotext defines how finalized recordings are turned into text.
package speechtotext

import "github.com/koscakluka/ema-voice/core/language"

type TranscriptionOptions struct {
	// Language is the language the recording is expected to be spoken in.
	Language language.Tag
}

type TranscriptionOption func(*TranscriptionOptions)

// NewTranscriptionOptions applies opts on top of the defaults.
func NewTranscriptionOptions(opts ...TranscriptionOption) TranscriptionOptions {
	options := TranscriptionOptions{Language: language.English}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func WithLanguage(tag language.Tag) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		if !tag.IsValid() {
			return
		}
		o.Language = tag
	}
}
