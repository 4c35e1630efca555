package events

const (
	// KindPlaybackStarted identifies an answer starting to render.
	KindPlaybackStarted Kind = "playback.started"
	// KindPlaybackEnded identifies an answer finishing or being interrupted.
	KindPlaybackEnded Kind = "playback.ended"
)

// PlaybackStarted marks the start of speech output.
type PlaybackStarted struct {
	Base
	Text     string
	Strategy string
}

// NewPlaybackStarted creates a playback started event.
func NewPlaybackStarted(text, strategy string) PlaybackStarted {
	return PlaybackStarted{Base: NewBase(KindPlaybackStarted), Text: text, Strategy: strategy}
}

// PlaybackEnded marks the end of speech output.
type PlaybackEnded struct {
	Base
	Interrupted bool
}

// NewPlaybackEnded creates a playback ended event.
func NewPlaybackEnded(interrupted bool) PlaybackEnded {
	return PlaybackEnded{Base: NewBase(KindPlaybackEnded), Interrupted: interrupted}
}
