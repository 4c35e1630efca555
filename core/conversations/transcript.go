package conversations

import (
	"sync"

	"github.com/jinzhu/copier"
)

// Transcript is an append-only, ordered list of turns that is safe for
// concurrent use.
type Transcript struct {
	mu    sync.RWMutex
	turns []Turn
}

func NewTranscript(turns ...Turn) *Transcript {
	t := &Transcript{}
	for _, turn := range turns {
		t.Append(turn)
	}
	return t
}

// Append adds turn at the end of the transcript and returns its index.
func (t *Transcript) Append(turn Turn) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.turns = append(t.turns, turn)
	return len(t.turns) - 1
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.turns)
}

// Turns returns a copy of the transcript, oldest first.
func (t *Transcript) Turns() []Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()

	turns := []Turn{}
	_ = copier.Copy(&turns, t.turns)
	return turns
}
