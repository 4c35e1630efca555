// Package espeak speaks text on the device with the espeak-ng command.
package espeak

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/koscakluka/ema-voice/core/language"
	"github.com/koscakluka/ema-voice/core/texttospeech"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const scopeName = "github.com/koscakluka/ema-voice/core/texttospeech/espeak"

var (
	tracer = otel.Tracer(scopeName)
	logger = otelslog.NewLogger(scopeName)
)

const (
	DefaultBinary = "espeak-ng"
	DefaultRate   = 160

	waitDelay = 500 * time.Millisecond
)

type Synthesizer struct {
	binary string
	rate   int
	voices map[language.Tag]string
}

type SynthesizerOption func(*Synthesizer)

func NewSynthesizer(opts ...SynthesizerOption) *Synthesizer {
	s := &Synthesizer{
		binary: DefaultBinary,
		rate:   DefaultRate,
		voices: map[language.Tag]string{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func WithBinary(binary string) SynthesizerOption {
	return func(s *Synthesizer) {
		if binary != "" {
			s.binary = binary
		}
	}
}

// WithRate sets the speaking rate in words per minute.
func WithRate(wordsPerMinute int) SynthesizerOption {
	return func(s *Synthesizer) {
		if wordsPerMinute > 0 {
			s.rate = wordsPerMinute
		}
	}
}

// WithVoice overrides the voice used for a language. By default the voice is
// the language's ISO-639-1 code, e.g. "hi".
func WithVoice(tag language.Tag, voice string) SynthesizerOption {
	return func(s *Synthesizer) { s.voices[tag] = voice }
}

func (s *Synthesizer) voiceFor(tag language.Tag) string {
	if voice, ok := s.voices[tag]; ok && voice != "" {
		return voice
	}
	return tag.Base()
}

// Speak runs espeak-ng and waits for it to exit. Cancelling ctx kills the
// process.
func (s *Synthesizer) Speak(ctx context.Context, text string, opts ...texttospeech.TextToSpeechOption) error {
	options := texttospeech.NewTextToSpeechOptions(opts...)
	voice := s.voiceFor(options.Language)

	ctx, span := tracer.Start(ctx, "speak on device")
	defer span.End()
	span.SetAttributes(attribute.String("speech.voice", voice))

	cmd := exec.CommandContext(ctx, s.binary, "-v", voice, "-s", strconv.Itoa(s.rate), "--stdin")
	cmd.Stdin = strings.NewReader(text)
	cmd.WaitDelay = waitDelay

	output, err := cmd.CombinedOutput()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		err = fmt.Errorf("failed to run %s: %w: %s", s.binary, err, strings.TrimSpace(string(output)))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	logger.Debug("spoke on device", "voice", voice, "characters", len(text))
	return nil
}
