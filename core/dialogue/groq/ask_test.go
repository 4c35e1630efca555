package groq

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/koscakluka/ema-voice/core/conversations"
	"github.com/koscakluka/ema-voice/core/dialogue"
	"github.com/koscakluka/ema-voice/core/failures"
	"github.com/koscakluka/ema-voice/core/language"
)

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()

	client, err := NewClient(WithAPIKey("test-key"), WithURL(server.URL), WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("expected client, got %v", err)
	}
	return client
}

func TestAskSendsSchemaHistoryAndLanguage(t *testing.T) {
	var request struct {
		Messages       []message `json:"messages"`
		ResponseFormat *struct {
			Type       string `json:"type"`
			JSONSchema struct {
				Name   string          `json:"name"`
				Schema json.RawMessage `json:"schema"`
				Strict bool            `json:"strict"`
			} `json:"json_schema"`
		} `json:"response_format"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("expected bearer token, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"answer\":\" Spray copper fungicide. \"}"}}]}`))
	}))
	defer server.Close()

	history := []conversations.Turn{conversations.NewAssistantTurn("Your tomato has late blight.")}
	got, err := newTestClient(t, server).Ask(context.Background(), "How do I treat it?",
		dialogue.WithSubject("Tomato Late Blight"),
		dialogue.WithLanguage(language.Telugu),
		dialogue.WithHistory(history),
	)
	if err != nil {
		t.Fatalf("expected answer, got %v", err)
	}
	if got != "Spray copper fungicide." {
		t.Fatalf("expected trimmed answer, got %q", got)
	}

	if request.ResponseFormat == nil || request.ResponseFormat.JSONSchema.Name != "answer" || !request.ResponseFormat.JSONSchema.Strict {
		t.Fatalf("expected strict answer json schema, got %+v", request.ResponseFormat)
	}
	if !strings.Contains(string(request.ResponseFormat.JSONSchema.Schema), `"answer"`) {
		t.Fatalf("expected schema to describe the answer field, got %s", request.ResponseFormat.JSONSchema.Schema)
	}
	if len(request.Messages) != 3 {
		t.Fatalf("expected system, history and question messages, got %d", len(request.Messages))
	}
	system := request.Messages[0].Content
	if !strings.Contains(system, "Tomato Late Blight") || !strings.Contains(system, "Telugu") {
		t.Fatalf("expected subject and language in instructions, got %q", system)
	}
	if request.Messages[1].Role != messageRoleAssistant || request.Messages[2].Content != "How do I treat it?" {
		t.Fatalf("unexpected messages %+v", request.Messages)
	}
}

func TestAskNonOKStatusIsServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(t, server).Ask(context.Background(), "question")

	var serviceErr *failures.ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected service error, got %v", err)
	}
	if serviceErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, serviceErr.StatusCode)
	}
}

func TestAskWithoutChoicesIsServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server).Ask(context.Background(), "question")
	if !errors.Is(err, failures.ErrServiceError) || !errors.Is(err, errNoChoices) {
		t.Fatalf("expected service error without choices, got %v", err)
	}
}

func TestAskAcceptsFencedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"` + "```json\\n{\\\"answer\\\":\\\"ok\\\"}\\n```" + `"}}]}`))
	}))
	defer server.Close()

	got, err := newTestClient(t, server).Ask(context.Background(), "question")
	if err != nil {
		t.Fatalf("expected answer, got %v", err)
	}
	if got != "ok" {
		t.Fatalf("expected %q, got %q", "ok", got)
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")

	if _, err := NewClient(); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
