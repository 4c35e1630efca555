package groq

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/koscakluka/ema-voice/core/dialogue"
	"github.com/koscakluka/ema-voice/core/failures"
	"github.com/koscakluka/ema-voice/core/language"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "groq"

type answer struct {
	Answer string `json:"answer" jsonschema:"description=A short spoken answer for the farmer"`
}

// Ask answers question about the subject in the requested language.
func (c *Client) Ask(ctx context.Context, question string, opts ...dialogue.AskOption) (string, error) {
	options := dialogue.NewAskOptions(opts...)

	ctx, span := tracer.Start(ctx, "ask question")
	defer span.End()
	span.SetAttributes(
		attribute.String("request.model", c.model),
		attribute.String("dialogue.language", options.Language.String()),
		attribute.Int("dialogue.history_turns", len(options.History)),
	)

	messages := toMessages(instructions(options.Subject, options.Language), options.History)
	messages = append(messages, message{Role: messageRoleUser, Content: question})

	var response answer
	if err := promptJSONSchema(ctx, c, messages, &response); err != nil {
		serviceErr := failures.NewServiceError(serviceName, "chat", err)
		var statusErr *statusError
		if errors.As(err, &statusErr) {
			serviceErr.StatusCode = statusErr.StatusCode
		}
		logger.Warn("failed to answer question", "error", err)
		return "", serviceErr
	}

	text := strings.TrimSpace(response.Answer)
	if text == "" {
		return "", failures.NewServiceError(serviceName, "chat", errors.New("empty answer"))
	}
	return text, nil
}

func instructions(subject string, tag language.Tag) string {
	var b strings.Builder
	b.WriteString("You are an agricultural assistant helping a farmer by voice. ")
	b.WriteString("Answer briefly in plain sentences that sound natural when spoken aloud. ")
	if subject != "" {
		fmt.Fprintf(&b, "The conversation is about: %s. ", subject)
	}
	fmt.Fprintf(&b, "Always answer in %s.", tag.Name())
	return b.String()
}

func attributesFromUsage(ctx context.Context, totalTokens int) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("response.total_tokens", totalTokens))
}
