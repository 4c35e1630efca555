// Package groq answers questions with Groq chat completions constrained to a
// JSON schema.
package groq

import (
	"errors"
	"net/http"
	"os"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultURL   = "https://api.groq.com/openai/v1/chat/completions"
	defaultModel = "openai/gpt-oss-20b"
)

var ErrMissingAPIKey = errors.New("groq api key not found")

type Client struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

type ClientOption func(*Client)

// NewClient creates a client. The API key defaults to the GROQ_API_KEY
// environment variable.
func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{
		apiKey:     os.Getenv("GROQ_API_KEY"),
		model:      defaultModel,
		url:        defaultURL,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
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
	return func(c *Client) {
		if apiKey != "" {
			c.apiKey = apiKey
		}
	}
}

func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

func WithURL(url string) ClientOption {
	return func(c *Client) {
		if url != "" {
			c.url = url
		}
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}
