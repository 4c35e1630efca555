// Package deepgram synthesizes answers with the Deepgram speak websocket.
package deepgram

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/gorilla/websocket"
)

const defaultSpeakURL = "wss://api.deepgram.com/v1/speak"

var ErrMissingAPIKey = errors.New("deepgram api key not found")

type TextToSpeechClient struct {
	apiKey   string
	speakURL string
	voice    deepgramVoice
	dialer   *websocket.Dialer
}

type ClientOption func(*TextToSpeechClient)

// NewTextToSpeechClient creates a client speaking with voice. The API key
// defaults to the DEEPGRAM_API_KEY environment variable.
func NewTextToSpeechClient(voice deepgramVoice, opts ...ClientOption) (*TextToSpeechClient, error) {
	if voice == "" {
		voice = defaultVoice
	}
	if !slices.Contains(GetAvailableVoices(), voice) {
		return nil, fmt.Errorf("invalid voice %q", voice)
	}

	client := &TextToSpeechClient{
		apiKey:   os.Getenv("DEEPGRAM_API_KEY"),
		speakURL: defaultSpeakURL,
		voice:    voice,
		dialer:   websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(client)
	}

	if client.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return client, nil
}

func WithAPIKey(apiKey string) ClientOption {
	return func(c *TextToSpeechClient) {
		if apiKey != "" {
			c.apiKey = apiKey
		}
	}
}

func WithSpeakURL(speakURL string) ClientOption {
	return func(c *TextToSpeechClient) {
		if speakURL != "" {
			c.speakURL = speakURL
		}
	}
}

func (c *TextToSpeechClient) SetVoice(voice deepgramVoice) error {
	if !slices.Contains(GetAvailableVoices(), voice) {
		return fmt.Errorf("invalid voice %q", voice)
	}
	c.voice = voice
	return nil
}
