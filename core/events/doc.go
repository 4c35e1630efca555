// Package events defines the typed events a voice controller emits to its
// observer.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - session.*
//   - mode.*
//   - transcript.*
//   - notice.*
//   - capture.*
//   - playback.*
//
// Events are delivered in the order the controller produced them, on a
// single goroutine, so observers may call back into the controller.
//
// session events
//
//   - SessionOpened (session.opened): a session started for a subject.
//   - SessionClosed (session.closed): the session ended and released every
//     resource.
//
// mode events
//
//   - ModeChanged (mode.changed): the conversation mode transitioned.
//
// transcript events
//
//   - TurnAppended (transcript.turn_appended): a user or assistant turn was
//     appended to the transcript.
//
// notice events
//
//   - NoticeShown (notice.shown): a transient, localized notice should be
//     displayed.
//   - NoticeCleared (notice.cleared): the notice should be dismissed.
//
// capture events
//
//   - CaptureStarted (capture.started): the microphone was acquired.
//   - CaptureFinalized (capture.finalized): the recording ended with an
//     outcome.
//
// playback events
//
//   - PlaybackStarted (playback.started): an answer started rendering.
//   - PlaybackEnded (playback.ended): rendering finished or was interrupted.
package events
