package orchestration

import "fmt"

// Mode is the conversation mode of a session. Exactly one mode is current at
// any time and it only changes along the edges of the transition table.
type Mode int

const (
	ModeIdle Mode = iota
	ModeListening
	ModeTranscribing
	ModeThinking
	ModeSpeaking
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeListening:
		return "listening"
	case ModeTranscribing:
		return "transcribing"
	case ModeThinking:
		return "thinking"
	case ModeSpeaking:
		return "speaking"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// transitions lists the legal edges. Every mode may return to idle, which is
// how Close ends a session from anywhere.
var transitions = map[Mode][]Mode{
	ModeIdle:         {ModeListening, ModeThinking, ModeSpeaking},
	ModeListening:    {ModeTranscribing, ModeIdle},
	ModeTranscribing: {ModeThinking, ModeIdle},
	ModeThinking:     {ModeSpeaking, ModeIdle},
	ModeSpeaking:     {ModeIdle, ModeThinking},
}

func (m Mode) canTransitionTo(to Mode) bool {
	for _, allowed := range transitions[m] {
		if allowed == to {
			return true
		}
	}
	return false
}
