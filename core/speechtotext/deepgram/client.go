// Package deepgram transcribes finalized recordings with the Deepgram
// listen websocket.
package deepgram

import (
	"errors"
	"os"

	"github.com/gorilla/websocket"
)

const (
	defaultListenURL = "wss://api.deepgram.com/v1/listen"
	defaultModel     = "nova-2"
	// chunkSize keeps individual websocket frames small, as they would be
	// when streaming from a microphone.
	chunkSize = 8 * 1024
)

var ErrMissingAPIKey = errors.New("deepgram api key not found")

type TranscriptionClient struct {
	apiKey    string
	listenURL string
	model     string
	dialer    *websocket.Dialer
}

type ClientOption func(*TranscriptionClient)

// NewTranscriptionClient creates a client. The API key defaults to the
// DEEPGRAM_API_KEY environment variable.
func NewTranscriptionClient(opts ...ClientOption) (*TranscriptionClient, error) {
	client := &TranscriptionClient{
		apiKey:    os.Getenv("DEEPGRAM_API_KEY"),
		listenURL: defaultListenURL,
		model:     defaultModel,
		dialer:    websocket.DefaultDialer,
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
	return func(c *TranscriptionClient) {
		if apiKey != "" {
			c.apiKey = apiKey
		}
	}
}

func WithListenURL(listenURL string) ClientOption {
	return func(c *TranscriptionClient) {
		if listenURL != "" {
			c.listenURL = listenURL
		}
	}
}

func WithModel(model string) ClientOption {
	return func(c *TranscriptionClient) {
		if model != "" {
			c.model = model
		}
	}
}
