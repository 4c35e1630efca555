// Package backend is a client for the CropSense voice endpoints: speech to
// text, disease-scoped chat and text to speech.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/koscakluka/ema-voice/core/failures"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultBaseURL = "http://localhost:8000/api"
	serviceName    = "cropsense"

	maxErrorBodySize = 2048
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// post sends body as JSON to path and decodes the JSON response into out.
// Every failure is returned as a *failures.ServiceError for op.
func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	ctx, span := tracer.Start(ctx, "post "+op)
	defer span.End()
	span.SetAttributes(attribute.String("http.route", path))

	if err := c.do(ctx, op, path, body, out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, path string, body, out any) error {
	requestBody, err := json.Marshal(body)
	if err != nil {
		return failures.NewServiceError(serviceName, op, fmt.Errorf("error marshalling JSON: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(requestBody))
	if err != nil {
		return failures.NewServiceError(serviceName, op, fmt.Errorf("error creating HTTP request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failures.NewServiceError(serviceName, op, fmt.Errorf("error sending request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		serviceErr := failures.NewServiceError(serviceName, op, errors.New(errorDetail(respBody)))
		serviceErr.StatusCode = resp.StatusCode
		return serviceErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return failures.NewServiceError(serviceName, op, fmt.Errorf("error decoding response: %w", err))
	}
	return nil
}

// errorDetail extracts the "detail" message of an error response, falling
// back to the raw body.
func errorDetail(body []byte) string {
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != nil {
		if detail, ok := payload.Detail.(string); ok {
			return detail
		}
		return fmt.Sprint(payload.Detail)
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return "empty response body"
}
