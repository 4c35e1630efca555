package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"go.opentelemetry.io/otel/codes"
)

var errNoChoices = errors.New("response has no choices")

// statusError is returned for non-OK responses.
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("non-OK HTTP status %d: %s", e.StatusCode, e.Body)
}

// promptJSONSchema asks for a completion that satisfies the JSON schema
// reflected from T and decodes it into output.
func promptJSONSchema[T any](ctx context.Context, c *Client, messages []message, output *T) error {
	ctx, span := tracer.Start(ctx, "prompt llm structured")
	defer span.End()

	if err := c.promptJSONSchema(ctx, messages, output); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (c *Client) promptJSONSchema(ctx context.Context, messages []message, output any) error {
	outputType := reflect.TypeOf(output).Elem()

	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.ReflectFromType(outputType)

	reqBody := schemaRequestBody{
		Model:    c.model,
		Messages: messages,
		ResponseFormat: &chatResponseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchema{
				Name:   outputType.Name(),
				Schema: *schema,
				Strict: true,
			},
		},
	}

	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &statusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBodyBytes))}
	}

	var responseBody schemaResponseBody
	if err := json.Unmarshal(respBodyBytes, &responseBody); err != nil {
		return fmt.Errorf("error unmarshalling response body: %w", err)
	}
	if len(responseBody.Choices) == 0 {
		return errNoChoices
	}

	content := responseBody.Choices[0].Message.Content
	// Some models wrap JSON in a fenced code block.
	if split := strings.Split(content, "```"); len(split) > 2 {
		content = strings.TrimPrefix(strings.TrimSpace(split[1]), "json")
	}
	if err := json.Unmarshal([]byte(content), output); err != nil {
		return fmt.Errorf("error unmarshalling response: %w", err)
	}

	if responseBody.Usage != nil {
		attributesFromUsage(ctx, responseBody.Usage.TotalTokens)
	}
	return nil
}

type schemaRequestBody struct {
	Model          string              `json:"model"`
	Messages       []message           `json:"messages"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatResponseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	// Name identifies the schema in the response.
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Schema      jsonschema.Schema `json:"schema"`
	// Strict enforces the schema upon the generated content.
	Strict bool `json:"strict"`
}

type schemaResponseBody struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role,omitempty"`
			Content string `json:"content,omitempty"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
