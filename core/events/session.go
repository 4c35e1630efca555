package events

const (
	// KindSessionOpened identifies the start of a session.
	KindSessionOpened Kind = "session.opened"
	// KindSessionClosed identifies the end of a session.
	KindSessionClosed Kind = "session.closed"
)

// SessionOpened marks the start of a session.
type SessionOpened struct {
	Base
	SessionID string
	Subject   string
	Language  string
}

// NewSessionOpened creates a session opened event.
func NewSessionOpened(sessionID, subject, language string) SessionOpened {
	return SessionOpened{
		Base:      NewBase(KindSessionOpened),
		SessionID: sessionID,
		Subject:   subject,
		Language:  language,
	}
}

// SessionClosed marks the end of a session.
type SessionClosed struct {
	Base
	SessionID string
}

// NewSessionClosed creates a session closed event.
func NewSessionClosed(sessionID string) SessionClosed {
	return SessionClosed{Base: NewBase(KindSessionClosed), SessionID: sessionID}
}
