package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-voice/core/audio"
	"github.com/koscakluka/ema-voice/core/failures"
	"github.com/koscakluka/ema-voice/core/speechtotext"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const serviceName = "deepgram"

// Transcribe streams the recording to Deepgram, closes the stream and
// collects every final result until Deepgram closes the connection.
func (s *TranscriptionClient) Transcribe(ctx context.Context, payload audio.Payload, opts ...speechtotext.TranscriptionOption) (string, error) {
	options := speechtotext.NewTranscriptionOptions(opts...)

	ctx, span := tracer.Start(ctx, "transcribe recording")
	defer span.End()
	span.SetAttributes(attribute.String("speech.language", options.Language.BCP47()))

	transcript, err := s.transcribe(ctx, payload, options)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return transcript, nil
}

func (s *TranscriptionClient) transcribe(ctx context.Context, payload audio.Payload, options speechtotext.TranscriptionOptions) (string, error) {
	pcm, encoding, err := unwrapPayload(payload)
	if err != nil {
		return "", failures.NewServiceError(serviceName, "listen", err)
	}

	deepgramEncoding, err := convertEncoding(encoding)
	if err != nil {
		return "", failures.NewServiceError(serviceName, "listen", fmt.Errorf("invalid encoding: %w", err))
	}

	conn, err := s.connectWebsocket(ctx, connectionOptions{
		sampleRate: deepgramEncoding.SampleRate,
		encoding:   deepgramEncoding.Format.Name(),
		language:   options.Language.BCP47(),
	})
	if err != nil {
		return "", err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := sendAudio(conn, pcm); err != nil {
		return "", s.connectionError(ctx, "failed to send audio", err)
	}

	transcript, err := readTranscript(conn)
	if err != nil {
		return "", s.connectionError(ctx, "failed to read transcript", err)
	}
	if transcript == "" {
		return "", failures.ErrNoSpeechDetected
	}
	return transcript, nil
}

func (s *TranscriptionClient) connectionError(ctx context.Context, message string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return failures.NewServiceError(serviceName, "listen", fmt.Errorf("%s: %w", message, err))
}

func unwrapPayload(payload audio.Payload) ([]byte, audio.EncodingInfo, error) {
	if payload.ContentType == audio.ContentTypeWAV {
		clip, err := audio.DecodeWAV(payload.Data)
		if err != nil {
			return nil, audio.EncodingInfo{}, err
		}
		return clip.PCM, clip.Encoding, nil
	}

	encoding := payload.Encoding
	if encoding.IsZero() {
		encoding = audio.GetDefaultEncodingInfo()
	}
	return payload.Data, encoding, nil
}

type connectionOptions struct {
	sampleRate int
	encoding   string
	language   string
}

func (s *TranscriptionClient) connectWebsocket(ctx context.Context, options connectionOptions) (*websocket.Conn, error) {
	listenURL, err := url.Parse(s.listenURL)
	if err != nil {
		return nil, failures.NewServiceError(serviceName, "listen", fmt.Errorf("invalid listen url: %w", err))
	}

	queryParams := listenURL.Query()
	queryParams.Set("encoding", options.encoding)
	queryParams.Set("sample_rate", strconv.Itoa(options.sampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", s.model)
	queryParams.Set("language", options.language)
	queryParams.Set("smart_format", "true")
	listenURL.RawQuery = queryParams.Encode()

	conn, resp, err := s.dialer.DialContext(ctx, listenURL.String(),
		http.Header{"Authorization": {"Token " + s.apiKey}})
	if err != nil {
		serviceErr := failures.NewServiceError(serviceName, "listen",
			fmt.Errorf("failed to open socket connection to deepgram: %w", err))
		if resp != nil {
			serviceErr.StatusCode = resp.StatusCode
		}
		return nil, serviceErr
	}

	return conn, nil
}

func sendAudio(conn *websocket.Conn, pcm []byte) error {
	for start := 0; start < len(pcm); start += chunkSize {
		end := min(start+chunkSize, len(pcm))
		if err := conn.WriteMessage(websocket.BinaryMessage, pcm[start:end]); err != nil {
			return err
		}
	}

	return conn.WriteJSON(struct {
		Type string `json:"type"`
	}{Type: string(api.TypeCloseStreamResponse)})
}

// readTranscript joins final results until the server closes the stream.
func readTranscript(conn *websocket.Conn) (string, error) {
	var segments []string
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return strings.Join(segments, " "), nil
			}
			return "", err
		}
		if msgType == websocket.BinaryMessage {
			continue
		}

		segment, err := finalSegment(msg)
		if err != nil {
			logger.Warn("failed to unmarshal deepgram message", "error", err)
			continue
		}
		if segment != "" {
			segments = append(segments, segment)
		}
	}
}

var errUnexpectedMessage = errors.New("unexpected message")

func finalSegment(msg []byte) (string, error) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		return "", err
	}

	if api.TypeResponse(parsedMsg.Type) != api.TypeMessageResponse {
		return "", nil
	}

	var msgResp api.MessageResponse
	if err := json.Unmarshal(msg, &msgResp); err != nil {
		return "", fmt.Errorf("%w: %w", errUnexpectedMessage, err)
	}
	if !msgResp.IsFinal || len(msgResp.Channel.Alternatives) == 0 {
		return "", nil
	}
	return strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript), nil
}
