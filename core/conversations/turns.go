// Package conversations holds the transcript of a voice session.
package conversations

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of the conversation. Turns are never modified after
// they have been appended to a [Transcript].
type Turn struct {
	ID        string
	Role      Role
	Text      string
	CreatedAt time.Time
}

func NewTurn(role Role, text string) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

func NewUserTurn(text string) Turn      { return NewTurn(RoleUser, text) }
func NewAssistantTurn(text string) Turn { return NewTurn(RoleAssistant, text) }
