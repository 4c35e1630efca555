package groq

import "github.com/koscakluka/ema-voice/core/conversations"

type message struct {
	Role    messageRole `json:"role"`
	Content string      `json:"content"`
}

type messageRole string

const (
	messageRoleSystem    messageRole = "system"
	messageRoleUser      messageRole = "user"
	messageRoleAssistant messageRole = "assistant"
)

func toMessages(instructions string, turns []conversations.Turn) []message {
	messages := []message{}
	if instructions != "" {
		messages = append(messages, message{
			Role:    messageRoleSystem,
			Content: instructions,
		})
	}
	for _, turn := range turns {
		if turn.Text == "" {
			continue
		}

		role := messageRoleUser
		if turn.Role == conversations.RoleAssistant {
			role = messageRoleAssistant
		}
		messages = append(messages, message{Role: role, Content: turn.Text})
	}
	return messages
}
