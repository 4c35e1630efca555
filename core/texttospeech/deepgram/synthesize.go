package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-voice/core/audio"
	"github.com/koscakluka/ema-voice/core/failures"
	"github.com/koscakluka/ema-voice/core/texttospeech"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const serviceName = "deepgram"

var (
	errNoAudio             = errors.New("no audio received")
	errUnsupportedLanguage = errors.New("voice does not speak the requested language")
)

type websocketMessage struct {
	Type string `json:"type"`
}

type speakMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

var (
	flushMsg = websocketMessage{Type: "Flush"}
	closeMsg = websocketMessage{Type: "Close"}
)

// Synthesize speaks text and collects the raw audio until Deepgram confirms
// the flush. Text in a language the configured voice does not speak is
// rejected without contacting Deepgram.
func (c *TextToSpeechClient) Synthesize(ctx context.Context, text string, opts ...texttospeech.TextToSpeechOption) (*audio.Clip, error) {
	options := texttospeech.NewTextToSpeechOptions(opts...)

	ctx, span := tracer.Start(ctx, "synthesize speech")
	defer span.End()
	span.SetAttributes(
		attribute.String("speech.voice", string(c.voice)),
		attribute.String("speech.language", options.Language.String()),
	)

	clip, err := c.synthesize(ctx, text, options)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return clip, nil
}

func (c *TextToSpeechClient) synthesize(ctx context.Context, text string, options texttospeech.TextToSpeechOptions) (*audio.Clip, error) {
	if voiceLanguage := c.voice.Language(); voiceLanguage != options.Language {
		return nil, failures.NewServiceError(serviceName, "speak",
			fmt.Errorf("%w: voice %s speaks %s, not %s", errUnsupportedLanguage, c.voice, voiceLanguage, options.Language))
	}

	encoding := options.EncodingInfo
	if encoding.Format != audio.EncodingLinear16 {
		encoding = audio.GetDefaultEncodingInfo()
	}

	conn, err := c.connectWebsocket(ctx, encoding)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := conn.WriteJSON(speakMessage{Type: "Speak", Text: text}); err != nil {
		return nil, c.connectionError(ctx, "failed to send text", err)
	}
	if err := conn.WriteJSON(flushMsg); err != nil {
		return nil, c.connectionError(ctx, "failed to flush text", err)
	}

	pcm, err := readUntilFlushed(conn)
	if err != nil {
		return nil, c.connectionError(ctx, "failed to read audio", err)
	}

	if err := conn.WriteJSON(closeMsg); err != nil {
		logger.Debug("failed to close deepgram speak stream", "error", err)
	}

	if len(pcm) == 0 {
		return nil, failures.NewServiceError(serviceName, "speak", errNoAudio)
	}
	return &audio.Clip{PCM: pcm, Encoding: encoding}, nil
}

func (c *TextToSpeechClient) connectWebsocket(ctx context.Context, encoding audio.EncodingInfo) (*websocket.Conn, error) {
	speakURL, err := url.Parse(c.speakURL)
	if err != nil {
		return nil, failures.NewServiceError(serviceName, "speak", fmt.Errorf("invalid speak url: %w", err))
	}

	urlValues := speakURL.Query()
	urlValues.Set("encoding", encoding.Format.Name())
	urlValues.Set("sample_rate", strconv.Itoa(encoding.SampleRate))
	urlValues.Set("model", string(c.voice))
	urlValues.Set("container", "none")
	speakURL.RawQuery = urlValues.Encode()

	conn, resp, err := c.dialer.DialContext(ctx, speakURL.String(),
		http.Header{"Authorization": {"token " + c.apiKey}})
	if err != nil {
		serviceErr := failures.NewServiceError(serviceName, "speak",
			fmt.Errorf("failed to open socket connection to deepgram: %w", err))
		if resp != nil {
			serviceErr.StatusCode = resp.StatusCode
		}
		return nil, serviceErr
	}

	return conn, nil
}

func (c *TextToSpeechClient) connectionError(ctx context.Context, message string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return failures.NewServiceError(serviceName, "speak", fmt.Errorf("%s: %w", message, err))
}

func readUntilFlushed(conn *websocket.Conn) ([]byte, error) {
	var pcm []byte
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			return nil, err
		}

		switch msgType {
		case websocket.BinaryMessage:
			pcm = append(pcm, msg...)
		case websocket.TextMessage:
			var parsedMsg websocketMessage
			if err := json.Unmarshal(msg, &parsedMsg); err != nil {
				logger.Debug("failed to unmarshal deepgram message", "error", err)
				continue
			}
			if parsedMsg.Type == "Flushed" {
				return pcm, nil
			}
		}
	}
}
