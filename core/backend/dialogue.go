package backend

import (
	"context"
	"errors"
	"strings"

	"github.com/koscakluka/ema-voice/core/dialogue"
	"github.com/koscakluka/ema-voice/core/failures"
)

type chatRequest struct {
	Question       string `json:"question"`
	DiseaseContext string `json:"disease_context"`
	Lang           string `json:"lang"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

// Ask sends a question about the subject to POST /chat. The backend keeps
// no conversation state, so history is not sent.
func (c *Client) Ask(ctx context.Context, question string, opts ...dialogue.AskOption) (string, error) {
	options := dialogue.NewAskOptions(opts...)

	var response chatResponse
	err := c.post(ctx, "chat", "/chat", chatRequest{
		Question:       question,
		DiseaseContext: options.Subject,
		Lang:           options.Language.String(),
	}, &response)
	if err != nil {
		return "", err
	}

	answer := strings.TrimSpace(response.Answer)
	if answer == "" {
		return "", failures.NewServiceError(serviceName, "chat", errors.New("empty answer"))
	}
	return answer, nil
}
