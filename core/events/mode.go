package events

// KindModeChanged identifies a conversation mode transition.
const KindModeChanged Kind = "mode.changed"

// ModeChanged carries a conversation mode transition.
type ModeChanged struct {
	Base
	From string
	To   string
}

// NewModeChanged creates a mode changed event.
func NewModeChanged(from, to string) ModeChanged {
	return ModeChanged{Base: NewBase(KindModeChanged), From: from, To: to}
}
