// Package config handles loading the ema-voice client configuration.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the ema-voice client.
type Config struct {
	Session      SessionConfig      `mapstructure:"session"`
	Capture      CaptureConfig      `mapstructure:"capture"`
	CropSense    CropSenseConfig    `mapstructure:"cropsense"`
	SpeechToText SpeechToTextConfig `mapstructure:"speech_to_text"`
	Dialogue     DialogueConfig     `mapstructure:"dialogue"`
	TextToSpeech TextToSpeechConfig `mapstructure:"text_to_speech"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// SessionConfig holds the defaults for the session opened at startup.
type SessionConfig struct {
	Subject        string        `mapstructure:"subject"`
	Language       string        `mapstructure:"language"` // EN, HI or TE
	InitialAnswer  string        `mapstructure:"initial_answer"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"` // 0 disables the timeout
}

// CaptureConfig selects the microphone backend and bounds capture episodes.
type CaptureConfig struct {
	Device         string        `mapstructure:"device"` // "miniaudio" or "portaudio"
	BufferSize     int           `mapstructure:"buffer_size"`
	MinViableBytes int           `mapstructure:"min_viable_bytes"`
	MaxDuration    time.Duration `mapstructure:"max_duration"`
}

// CropSenseConfig points at the CropSense API.
type CropSenseConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
}

// SpeechToTextConfig selects the transcription backend.
type SpeechToTextConfig struct {
	Backend  string         `mapstructure:"backend"` // "cropsense" or "deepgram"
	Deepgram DeepgramConfig `mapstructure:"deepgram"`
}

// DialogueConfig selects the question answering backend.
type DialogueConfig struct {
	Backend string     `mapstructure:"backend"` // "cropsense" or "groq"
	Groq    GroqConfig `mapstructure:"groq"`
}

// TextToSpeechConfig selects the remote synthesis backend and configures the
// on-device fallback.
type TextToSpeechConfig struct {
	Backend       string         `mapstructure:"backend"` // "cropsense", "deepgram" or "none"
	LocalLanguage string         `mapstructure:"local_language"`
	Deepgram      DeepgramConfig `mapstructure:"deepgram"`
	Espeak        EspeakConfig   `mapstructure:"espeak"`
}

// DeepgramConfig holds Deepgram API settings. Model is the listen model for
// transcription and the voice for synthesis.
type DeepgramConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// GroqConfig holds Groq API settings.
type GroqConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// EspeakConfig configures the on-device synthesizer.
type EspeakConfig struct {
	Binary string            `mapstructure:"binary"`
	Rate   int               `mapstructure:"rate"`
	Voices map[string]string `mapstructure:"voices"` // language tag -> espeak voice
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
	File   string `mapstructure:"file"`   // empty discards logs
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./ema-voice.yaml, ./configs/ema-voice.yaml,
// $HOME/.config/ema-voice/ema-voice.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("session.subject", "")
	v.SetDefault("session.language", "EN")
	v.SetDefault("session.initial_answer", "")
	v.SetDefault("session.request_timeout", "0s")
	v.SetDefault("capture.device", "miniaudio")
	v.SetDefault("capture.buffer_size", 1024)
	v.SetDefault("capture.min_viable_bytes", 1000)
	v.SetDefault("capture.max_duration", "15s")
	v.SetDefault("cropsense.base_url", "http://localhost:8000/api")
	v.SetDefault("cropsense.token", "")
	v.SetDefault("speech_to_text.backend", "cropsense")
	v.SetDefault("speech_to_text.deepgram.model", "nova-2")
	v.SetDefault("dialogue.backend", "cropsense")
	v.SetDefault("dialogue.groq.model", "openai/gpt-oss-20b")
	v.SetDefault("text_to_speech.backend", "cropsense")
	v.SetDefault("text_to_speech.local_language", "EN")
	v.SetDefault("text_to_speech.deepgram.model", "aura-2-thalia-en")
	v.SetDefault("text_to_speech.espeak.binary", "espeak-ng")
	v.SetDefault("text_to_speech.espeak.rate", 160)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("ema-voice")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "ema-voice"))
		}
	}

	// Environment variables: EMA_VOICE_SESSION_LANGUAGE, EMA_VOICE_CROPSENSE_TOKEN, etc.
	v.SetEnvPrefix("EMA_VOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Debug("no config file found, using defaults and environment variables")
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.CropSense.Token = resolveEnvRef(cfg.CropSense.Token)
	cfg.SpeechToText.Deepgram.APIKey = resolveEnvRef(cfg.SpeechToText.Deepgram.APIKey)
	cfg.TextToSpeech.Deepgram.APIKey = resolveEnvRef(cfg.TextToSpeech.Deepgram.APIKey)
	cfg.Dialogue.Groq.APIKey = resolveEnvRef(cfg.Dialogue.Groq.APIKey)

	return &cfg, nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger. Logs go to cfg.File since
// the terminal belongs to the UI; the returned closer closes that file.
func SetupLogging(cfg LoggingConfig) (io.Closer, error) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var (
		out    io.Writer = io.Discard
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		out, closer = file, file
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	slog.SetDefault(slog.New(handler))
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
