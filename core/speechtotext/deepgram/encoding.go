package deepgram

import (
	"errors"
	"fmt"

	"github.com/koscakluka/ema-voice/core/audio"
)

var errUnsupportedEncoding = errors.New("unsupported encoding")

type encodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

type encodingFormat string

func (e encodingFormat) Name() string { return string(e) }

const (
	encodingLinear16 encodingFormat = "linear16"
	encodingALaw     encodingFormat = "alaw"
	encodingMulaw    encodingFormat = "mulaw"
)

func convertEncoding(encoding audio.EncodingInfo) (*encodingInfo, error) {
	deepgramEncoding := encodingInfo{}
	switch encoding.SampleRate {
	case 8000, 16000, 24000, 32000, 48000:
		deepgramEncoding.SampleRate = encoding.SampleRate
	default:
		return nil, fmt.Errorf("%w: sample rate %d", errUnsupportedEncoding, encoding.SampleRate)
	}

	switch encoding.Format {
	case audio.EncodingLinear16:
		deepgramEncoding.Format = encodingLinear16
	case audio.EncodingALaw:
		deepgramEncoding.Format = encodingALaw
	case audio.EncodingMulaw:
		deepgramEncoding.Format = encodingMulaw
	default:
		return nil, fmt.Errorf("%w: format %q", errUnsupportedEncoding, encoding.Format.Name())
	}

	if deepgramEncoding.Format != encodingLinear16 && deepgramEncoding.SampleRate != 8000 {
		return nil, fmt.Errorf("%w: %s requires 8000Hz", errUnsupportedEncoding, deepgramEncoding.Format)
	}

	return &deepgramEncoding, nil
}
