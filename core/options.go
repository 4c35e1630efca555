package orchestration

import (
	"context"
	"time"

	"github.com/koscakluka/ema-voice/core/audio"
	"github.com/koscakluka/ema-voice/core/dialogue"
	"github.com/koscakluka/ema-voice/core/events"
	"github.com/koscakluka/ema-voice/core/language"
	"github.com/koscakluka/ema-voice/core/speechtotext"
	"github.com/koscakluka/ema-voice/core/texttospeech"
)

type ControllerOption func(*Controller)

type SpeechToText interface {
	Transcribe(ctx context.Context, payload audio.Payload, opts ...speechtotext.TranscriptionOption) (string, error)
}

type Dialogue interface {
	Ask(ctx context.Context, question string, opts ...dialogue.AskOption) (string, error)
}

// EventHandler receives controller events in emission order on a dedicated
// goroutine.
type EventHandler func(events.Event)

func WithCaptureDevice(device audio.CaptureDevice) ControllerOption {
	return func(c *Controller) { c.captureDevice = device }
}

func WithSpeechToText(client SpeechToText) ControllerOption {
	return func(c *Controller) { c.speechToText = client }
}

func WithDialogue(client Dialogue) ControllerOption {
	return func(c *Controller) { c.dialogue = client }
}

func WithRemoteSynthesizer(synthesizer texttospeech.RemoteSynthesizer) ControllerOption {
	return func(c *Controller) { c.output.remote = synthesizer }
}

func WithLocalSynthesizer(synthesizer texttospeech.LocalSynthesizer) ControllerOption {
	return func(c *Controller) { c.output.local = synthesizer }
}

func WithClipPlayer(player audio.ClipPlayer) ControllerOption {
	return func(c *Controller) { c.output.player = player }
}

// WithLocalSynthesisLanguage sets the language answered with on-device
// synthesis only. Defaults to English.
func WithLocalSynthesisLanguage(tag language.Tag) ControllerOption {
	return func(c *Controller) {
		if tag.IsValid() {
			c.output.localLanguage = tag
		}
	}
}

// WithMinViableBytes sets the capture size below which a recording is
// considered empty. Defaults to [DefaultMinViableBytes].
func WithMinViableBytes(n int) ControllerOption {
	return func(c *Controller) {
		if n >= 0 {
			c.minViableBytes = n
		}
	}
}

// WithMaxDuration sets how long a recording may run before it is finalized
// automatically. Defaults to [DefaultMaxDuration].
func WithMaxDuration(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.maxDuration = d
		}
	}
}

// WithRequestTimeout bounds every remote request. Zero, the default, means
// requests are only bounded by the session.
func WithRequestTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d >= 0 {
			c.requestTimeout = d
			c.output.requestTimeout = d
		}
	}
}

// WithNoticeDuration overrides how long a notice stays visible.
func WithNoticeDuration(notice Notice, d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.noticeDurations[notice] = d
		}
	}
}

func WithEventHandler(handler EventHandler) ControllerOption {
	return func(c *Controller) { c.eventHandler = handler }
}
