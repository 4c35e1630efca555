package orchestration

import "errors"

var (
	// ErrBusy is returned when an action is not accepted in the current mode.
	// The controller state is left unchanged.
	ErrBusy = errors.New("controller is busy")
	// ErrEmptyInput is returned when submitted text is blank.
	ErrEmptyInput = errors.New("input is empty")
	// ErrNotListening is returned by StopListening outside of Listening.
	ErrNotListening = errors.New("controller is not listening")
	// ErrNotOpen is returned when no session has been opened yet.
	ErrNotOpen = errors.New("session is not open")
	// ErrClosed is returned when the last session has been closed.
	ErrClosed = errors.New("session is closed")
	// ErrSessionOpen is returned by Open while a session is already open.
	ErrSessionOpen = errors.New("session is already open")

	errNoCaptureDevice     = errors.New("no capture device configured")
	errNoSpeechToText      = errors.New("no speech-to-text client configured")
	errNoDialogue          = errors.New("no dialogue client configured")
	errNoLocalSynthesizer  = errors.New("no on-device synthesizer configured")
	errNoRemoteSynthesizer = errors.New("no remote synthesizer configured")
	errEmptyClip           = errors.New("synthesized clip is empty")
	errEmptyAnswer         = errors.New("dialogue answer is empty")
)
