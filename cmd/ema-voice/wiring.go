package main

import (
	"fmt"
	"log/slog"
	"strings"

	orchestration "github.com/koscakluka/ema-voice/core"
	"github.com/koscakluka/ema-voice/core/audio"
	"github.com/koscakluka/ema-voice/core/audio/miniaudio"
	"github.com/koscakluka/ema-voice/core/audio/portaudio"
	"github.com/koscakluka/ema-voice/core/backend"
	"github.com/koscakluka/ema-voice/core/dialogue/groq"
	"github.com/koscakluka/ema-voice/core/language"
	deepgramstt "github.com/koscakluka/ema-voice/core/speechtotext/deepgram"
	"github.com/koscakluka/ema-voice/core/texttospeech"
	deepgramtts "github.com/koscakluka/ema-voice/core/texttospeech/deepgram"
	"github.com/koscakluka/ema-voice/core/texttospeech/espeak"
	"github.com/koscakluka/ema-voice/internal/config"
)

// newController builds a controller from cfg. The returned shutdown function
// releases the audio devices.
func newController(cfg *config.Config, handler orchestration.EventHandler) (*orchestration.Controller, func(), error) {
	var shutdowns []func()
	shutdown := func() {
		for i := len(shutdowns) - 1; i >= 0; i-- {
			shutdowns[i]()
		}
	}

	speaker, err := miniaudio.NewClient()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize audio: %w", err)
	}
	shutdowns = append(shutdowns, speaker.Shutdown)

	var microphone audio.CaptureDevice = speaker
	switch cfg.Capture.Device {
	case "miniaudio":
	case "portaudio":
		client, err := portaudio.NewClient(cfg.Capture.BufferSize)
		if err != nil {
			shutdown()
			return nil, nil, fmt.Errorf("failed to initialize portaudio: %w", err)
		}
		shutdowns = append(shutdowns, client.Shutdown)
		microphone = client
	default:
		shutdown()
		return nil, nil, fmt.Errorf("unknown capture device %q", cfg.Capture.Device)
	}

	cropsense := backend.NewClient(
		backend.WithBaseURL(cfg.CropSense.BaseURL),
		backend.WithToken(cfg.CropSense.Token),
	)

	speechToText, err := newSpeechToText(cfg.SpeechToText, cropsense)
	if err != nil {
		shutdown()
		return nil, nil, err
	}
	dialogue, err := newDialogue(cfg.Dialogue, cropsense)
	if err != nil {
		shutdown()
		return nil, nil, err
	}
	remote, err := newRemoteSynthesizer(cfg.TextToSpeech, cropsense)
	if err != nil {
		shutdown()
		return nil, nil, err
	}

	localLanguage, err := language.Parse(cfg.TextToSpeech.LocalLanguage)
	if err != nil {
		shutdown()
		return nil, nil, fmt.Errorf("invalid local synthesis language: %w", err)
	}

	opts := []orchestration.ControllerOption{
		orchestration.WithCaptureDevice(microphone),
		orchestration.WithSpeechToText(speechToText),
		orchestration.WithDialogue(dialogue),
		orchestration.WithLocalSynthesizer(newLocalSynthesizer(cfg.TextToSpeech.Espeak)),
		orchestration.WithClipPlayer(speaker),
		orchestration.WithLocalSynthesisLanguage(localLanguage),
		orchestration.WithMinViableBytes(cfg.Capture.MinViableBytes),
		orchestration.WithMaxDuration(cfg.Capture.MaxDuration),
		orchestration.WithRequestTimeout(cfg.Session.RequestTimeout),
		orchestration.WithEventHandler(handler),
	}
	if remote != nil {
		opts = append(opts, orchestration.WithRemoteSynthesizer(remote))
	}

	slog.Info("controller configured",
		"capture", cfg.Capture.Device,
		"speech_to_text", cfg.SpeechToText.Backend,
		"dialogue", cfg.Dialogue.Backend,
		"text_to_speech", cfg.TextToSpeech.Backend,
		"local_language", localLanguage.String())

	return orchestration.NewController(opts...), shutdown, nil
}

func newSpeechToText(cfg config.SpeechToTextConfig, cropsense *backend.Client) (orchestration.SpeechToText, error) {
	switch cfg.Backend {
	case "cropsense":
		return cropsense, nil
	case "deepgram":
		client, err := deepgramstt.NewTranscriptionClient(
			deepgramstt.WithAPIKey(cfg.Deepgram.APIKey),
			deepgramstt.WithModel(cfg.Deepgram.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create deepgram transcription client: %w", err)
		}
		return client, nil
	}
	return nil, fmt.Errorf("unknown speech to text backend %q", cfg.Backend)
}

func newDialogue(cfg config.DialogueConfig, cropsense *backend.Client) (orchestration.Dialogue, error) {
	switch cfg.Backend {
	case "cropsense":
		return cropsense, nil
	case "groq":
		client, err := groq.NewClient(groq.WithAPIKey(cfg.Groq.APIKey), groq.WithModel(cfg.Groq.Model))
		if err != nil {
			return nil, fmt.Errorf("failed to create groq client: %w", err)
		}
		return client, nil
	}
	return nil, fmt.Errorf("unknown dialogue backend %q", cfg.Backend)
}

// newRemoteSynthesizer returns nil when remote synthesis is disabled, in
// which case every answer is spoken on the device.
func newRemoteSynthesizer(cfg config.TextToSpeechConfig, cropsense *backend.Client) (texttospeech.RemoteSynthesizer, error) {
	switch cfg.Backend {
	case "cropsense":
		return cropsense, nil
	case "deepgram":
		client, err := deepgramtts.NewTextToSpeechClient(
			deepgramtts.Voice(cfg.Deepgram.Model),
			deepgramtts.WithAPIKey(cfg.Deepgram.APIKey),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create deepgram speech client: %w", err)
		}
		return client, nil
	case "none", "":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown text to speech backend %q", cfg.Backend)
}

func newLocalSynthesizer(cfg config.EspeakConfig) *espeak.Synthesizer {
	opts := []espeak.SynthesizerOption{
		espeak.WithBinary(cfg.Binary),
		espeak.WithRate(cfg.Rate),
	}
	for tag, voice := range cfg.Voices {
		parsed, err := language.Parse(tag)
		if err != nil {
			slog.Warn("ignoring espeak voice for unsupported language", "language", tag)
			continue
		}
		opts = append(opts, espeak.WithVoice(parsed, strings.TrimSpace(voice)))
	}
	return espeak.NewSynthesizer(opts...)
}
