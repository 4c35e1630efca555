package backend

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/koscakluka/ema-voice/core/audio"
	"github.com/koscakluka/ema-voice/core/dialogue"
	"github.com/koscakluka/ema-voice/core/failures"
	"github.com/koscakluka/ema-voice/core/language"
	"github.com/koscakluka/ema-voice/core/speechtotext"
	"github.com/koscakluka/ema-voice/core/texttospeech"
)

func newTestServer(t *testing.T, path string, handle func(t *testing.T, body map[string]string) (int, string)) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api"+path {
			t.Errorf("expected path %q, got %q", "/api"+path, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected bearer token, got %q", got)
		}

		body := map[string]string{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		status, response := handle(t, body)
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)

	client := NewClient(
		WithBaseURL(server.URL+"/api/"),
		WithToken("secret"),
		WithHTTPClient(server.Client()),
	)
	return client, server
}

func TestTranscribeSendsBase64AudioAndLanguage(t *testing.T) {
	payload := audio.Payload{Data: []byte("RIFF-audio"), ContentType: audio.ContentTypeWAV}
	client, _ := newTestServer(t, "/stt", func(t *testing.T, body map[string]string) (int, string) {
		if body["audio_base64"] != payload.Base64() {
			t.Errorf("expected base64 audio, got %q", body["audio_base64"])
		}
		if body["lang"] != "HI" {
			t.Errorf("expected lang HI, got %q", body["lang"])
		}
		return http.StatusOK, `{"transcript":"  my tomato leaves are brown  "}`
	})

	got, err := client.Transcribe(context.Background(), payload, speechtotext.WithLanguage(language.Hindi))
	if err != nil {
		t.Fatalf("expected transcript, got %v", err)
	}
	if got != "my tomato leaves are brown" {
		t.Fatalf("expected trimmed transcript, got %q", got)
	}
}

func TestTranscribeEmptyTranscriptIsNoSpeech(t *testing.T) {
	client, _ := newTestServer(t, "/stt", func(t *testing.T, body map[string]string) (int, string) {
		return http.StatusOK, `{"transcript":"   "}`
	})

	_, err := client.Transcribe(context.Background(), audio.Payload{Data: []byte{1}})
	if !errors.Is(err, failures.ErrNoSpeechDetected) {
		t.Fatalf("expected ErrNoSpeechDetected, got %v", err)
	}
}

func TestAskSendsSubjectAsDiseaseContext(t *testing.T) {
	client, _ := newTestServer(t, "/chat", func(t *testing.T, body map[string]string) (int, string) {
		if body["disease_context"] != "Tomato Late Blight" {
			t.Errorf("expected subject passed through, got %q", body["disease_context"])
		}
		if body["question"] != "What should I spray?" || body["lang"] != "TE" {
			t.Errorf("unexpected request %v", body)
		}
		return http.StatusOK, `{"answer":"Use a copper fungicide."}`
	})

	got, err := client.Ask(context.Background(), "What should I spray?",
		dialogue.WithSubject("Tomato Late Blight"),
		dialogue.WithLanguage(language.Telugu),
	)
	if err != nil {
		t.Fatalf("expected answer, got %v", err)
	}
	if got != "Use a copper fungicide." {
		t.Fatalf("expected answer, got %q", got)
	}
}

func TestAskErrorStatusIsServiceError(t *testing.T) {
	client, _ := newTestServer(t, "/chat", func(t *testing.T, body map[string]string) (int, string) {
		return http.StatusNotFound, `{"detail":"Disease context not found"}`
	})

	_, err := client.Ask(context.Background(), "question")

	var serviceErr *failures.ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected service error, got %v", err)
	}
	if serviceErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, serviceErr.StatusCode)
	}
	if !strings.Contains(serviceErr.Error(), "Disease context not found") {
		t.Fatalf("expected detail in error, got %q", serviceErr.Error())
	}
}

func TestSynthesizeDecodesWAVClip(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0}
	info := audio.EncodingInfo{SampleRate: 8000, Channels: 1, Format: audio.EncodingLinear16}
	encoded := base64.StdEncoding.EncodeToString(audio.EncodeWAV(pcm, info))

	client, _ := newTestServer(t, "/tts", func(t *testing.T, body map[string]string) (int, string) {
		if body["text"] != "namaste" || body["lang"] != "HI" {
			t.Errorf("unexpected request %v", body)
		}
		return http.StatusOK, `{"audio_base64":"` + encoded + `"}`
	})

	clip, err := client.Synthesize(context.Background(), "namaste", texttospeech.WithLanguage(language.Hindi))
	if err != nil {
		t.Fatalf("expected clip, got %v", err)
	}
	if string(clip.PCM) != string(pcm) || clip.Encoding != info {
		t.Fatalf("expected decoded clip, got %+v", clip)
	}
}

func TestSynthesizeInvalidAudioIsServiceError(t *testing.T) {
	client, _ := newTestServer(t, "/tts", func(t *testing.T, body map[string]string) (int, string) {
		return http.StatusOK, `{"audio_base64":"bm90IGEgd2F2"}`
	})

	_, err := client.Synthesize(context.Background(), "text")
	if !errors.Is(err, failures.ErrServiceError) || !errors.Is(err, audio.ErrInvalidWAV) {
		t.Fatalf("expected service error wrapping ErrInvalidWAV, got %v", err)
	}
}

func TestTransportFailureIsServiceError(t *testing.T) {
	client, server := newTestServer(t, "/stt", func(t *testing.T, body map[string]string) (int, string) {
		return http.StatusOK, `{}`
	})
	server.Close()

	_, err := client.Transcribe(context.Background(), audio.Payload{Data: []byte{1}})
	if failures.KindOf(err) != failures.KindServiceError {
		t.Fatalf("expected service error kind, got %v", err)
	}
}
