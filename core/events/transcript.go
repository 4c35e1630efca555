package events

import "github.com/koscakluka/ema-voice/core/conversations"

// KindTurnAppended identifies a turn appended to the transcript.
const KindTurnAppended Kind = "transcript.turn_appended"

// TurnAppended carries the turn that was appended.
type TurnAppended struct {
	Base
	Turn conversations.Turn
}

// NewTurnAppended creates a turn appended event.
func NewTurnAppended(turn conversations.Turn) TurnAppended {
	return TurnAppended{Base: NewBase(KindTurnAppended), Turn: turn}
}
