package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/koscakluka/ema-voice/core/audio"
	"github.com/koscakluka/ema-voice/core/conversations"
	"github.com/koscakluka/ema-voice/core/dialogue"
	"github.com/koscakluka/ema-voice/core/events"
	"github.com/koscakluka/ema-voice/core/failures"
	"github.com/koscakluka/ema-voice/core/language"
	"github.com/koscakluka/ema-voice/core/speechtotext"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SessionConfig describes the session started by [Controller.Open].
type SessionConfig struct {
	// Subject is the context every question is scoped to, e.g. the
	// detected condition. It is passed to the dialogue client unchanged.
	Subject string
	// Language defaults to English.
	Language language.Tag
	// InitialAnswer, when not blank, is appended as the first assistant turn
	// and spoken right away.
	InitialAnswer string
}

type session struct {
	id         string
	subject    string
	language   language.Tag
	transcript *conversations.Transcript

	ctx    context.Context
	cancel context.CancelFunc
}

// Controller drives one voice session at a time: it records questions,
// transcribes them, asks the dialogue service and speaks the answers.
//
// None of its methods block on remote services. Pipeline stages run in the
// background and every result is checked against the generation it was
// started under, so results of superseded stages are dropped.
type Controller struct {
	mu sync.Mutex

	mode       Mode
	generation uint64
	session    *session
	closed     bool

	capture    *captureSession
	output     speechOutput
	notices    *noticeBoard
	dispatcher atomic.Pointer[eventDispatcher]

	captureDevice audio.CaptureDevice
	speechToText  SpeechToText
	dialogue      Dialogue
	eventHandler  EventHandler

	minViableBytes  int
	maxDuration     time.Duration
	requestTimeout  time.Duration
	noticeDurations map[Notice]time.Duration
}

func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		mode:            ModeIdle,
		output:          speechOutput{localLanguage: language.English},
		minViableBytes:  DefaultMinViableBytes,
		maxDuration:     DefaultMaxDuration,
		noticeDurations: defaultNoticeDurations(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.notices = newNoticeBoard(c.noticeDurations, c.emit)
	return c
}

// Open starts a new session. A closed controller can be opened again.
func (c *Controller) Open(ctx context.Context, config SessionConfig) error {
	tag := config.Language
	if tag == "" {
		tag = language.English
	}
	if !tag.IsValid() {
		return fmt.Errorf("failed to open session: %w: %q", language.ErrUnsupported, tag)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return ErrSessionOpen
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	c.session = &session{
		id:         uuid.NewString(),
		subject:    config.Subject,
		language:   tag,
		transcript: conversations.NewTranscript(),
		ctx:        sessionCtx,
		cancel:     cancel,
	}
	c.closed = false
	c.mode = ModeIdle
	if c.eventHandler != nil {
		c.dispatcher.Store(newEventDispatcher(c.eventHandler))
	}

	logger.Info("session opened", "session_id", c.session.id, "subject", config.Subject, "language", tag.String())
	c.emit(events.NewSessionOpened(c.session.id, config.Subject, tag.String()))

	if initialAnswer := strings.TrimSpace(config.InitialAnswer); initialAnswer != "" {
		c.nextGeneration()
		c.respondLocked(initialAnswer)
	}
	return nil
}

// Close ends the session from any mode. It stops recording and speech,
// dismisses notices and discards every in-flight stage. Closing a
// controller without an open session does nothing.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil
	}

	c.nextGeneration()
	if c.capture != nil {
		c.capture.end()
		c.capture = nil
	}
	c.interruptSpeechLocked()
	c.notices.clear()
	c.session.cancel()
	if c.mode != ModeIdle {
		c.transition(ModeIdle)
	}

	logger.Info("session closed", "session_id", c.session.id, "turns", c.session.transcript.Len())
	c.emit(events.NewSessionClosed(c.session.id))
	c.dispatcher.Swap(nil).Stop()

	c.session = nil
	c.closed = true
	return nil
}

// StartListening starts recording a spoken question. It is only accepted
// while idle; opening the microphone happens in the background.
func (c *Controller) StartListening() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkOpenLocked(); err != nil {
		return err
	}
	// Speech in progress is never interrupted by a recording; StopSpeaking
	// or Submit end it.
	if c.mode != ModeIdle {
		return ErrBusy
	}

	gen := c.nextGeneration()
	capture := newCaptureSession(c.captureDevice, c.minViableBytes, c.maxDuration, func() {
		c.finishListening(gen)
	})
	c.capture = capture
	c.transition(ModeListening)

	go c.openCapture(c.session.ctx, gen, capture)
	return nil
}

// StopListening finalizes the current recording.
func (c *Controller) StopListening() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkOpenLocked(); err != nil {
		return err
	}
	if c.mode != ModeListening {
		return ErrNotListening
	}

	c.finalizeCaptureLocked()
	return nil
}

// Submit asks a typed question. Speech in progress is interrupted first.
func (c *Controller) Submit(text string) error {
	question := strings.TrimSpace(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkOpenLocked(); err != nil {
		return err
	}
	if question == "" {
		return ErrEmptyInput
	}

	switch c.mode {
	case ModeIdle:
	case ModeSpeaking:
		c.interruptSpeechLocked()
	default:
		return ErrBusy
	}

	c.nextGeneration()
	c.askLocked(question)
	return nil
}

// StopSpeaking interrupts the answer being spoken. It does nothing outside
// of Speaking.
func (c *Controller) StopSpeaking() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkOpenLocked(); err != nil {
		return err
	}
	if c.mode != ModeSpeaking {
		return nil
	}

	c.interruptSpeechLocked()
	c.nextGeneration()
	c.transition(ModeIdle)
	return nil
}

// SetLanguage switches the session language. Stages already running keep
// the language they started with.
func (c *Controller) SetLanguage(tag language.Tag) error {
	if !tag.IsValid() {
		return fmt.Errorf("failed to set language: %w: %q", language.ErrUnsupported, tag)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkOpenLocked(); err != nil {
		return err
	}

	c.session.language = tag
	return nil
}

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.mode
}

// Snapshot is a point-in-time view of the controller.
type Snapshot struct {
	Open       bool
	SessionID  string
	Subject    string
	Language   language.Tag
	Mode       Mode
	Turns      []conversations.Turn
	Notice     Notice
	NoticeText string
	Capturing  bool
	Playing    bool
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	notice, noticeText := c.notices.current()
	snapshot := Snapshot{
		Mode:       c.mode,
		Notice:     notice,
		NoticeText: noticeText,
		Capturing:  c.capture.isActive(),
		Playing:    c.output.isActive(),
	}
	if c.session != nil {
		snapshot.Open = true
		snapshot.SessionID = c.session.id
		snapshot.Subject = c.session.subject
		snapshot.Language = c.session.language
		snapshot.Turns = c.session.transcript.Turns()
	}
	return snapshot
}

func (c *Controller) openCapture(ctx context.Context, gen uint64, capture *captureSession) {
	ctx, span := tracer.Start(ctx, "open capture device")
	defer span.End()

	err := capture.begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.capture != capture {
		return
	}

	if err != nil {
		logger.Warn("failed to open capture device", "error", err)
		c.finalizeCaptureLocked()
		return
	}
	c.emit(events.NewCaptureStarted())
}

func (c *Controller) finishListening(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.mode != ModeListening {
		return
	}

	logger.Debug("capture reached maximum duration", "max_duration", c.maxDuration)
	c.finalizeCaptureLocked()
}

func (c *Controller) finalizeCaptureLocked() {
	capture := c.capture
	c.capture = nil
	if capture == nil {
		c.transition(ModeIdle)
		return
	}

	episode, payload := capture.end()
	c.emit(events.NewCaptureFinalized(string(episode.Outcome), episode.Size()))

	switch episode.Outcome {
	case OutcomeWithAudio:
		c.transition(ModeTranscribing)
		go c.transcribe(c.session.ctx, c.generation, payload, c.session.language)
	case OutcomeDenied:
		c.notices.show(NoticeMicDenied, c.session.language)
		c.transition(ModeIdle)
	default:
		c.notices.show(NoticeNoAudio, c.session.language)
		c.transition(ModeIdle)
	}
}

func (c *Controller) transcribe(ctx context.Context, gen uint64, payload audio.Payload, tag language.Tag) {
	ctx, span := tracer.Start(ctx, "transcribe question")
	span.SetAttributes(
		attribute.Int("capture.bytes", len(payload.Data)),
		attribute.String("speech.language", tag.String()),
	)

	transcript, err := c.callSpeechToText(ctx, payload, tag)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.mode != ModeTranscribing {
		return
	}

	if err != nil {
		notice := NoticeTranscriptionFailed
		if failures.KindOf(err) == failures.KindNoSpeechDetected {
			notice = NoticeNoSpeech
		}
		logger.Info("transcription produced no question", "error", err, "notice", string(notice))
		c.notices.show(notice, c.session.language)
		c.transition(ModeIdle)
		return
	}

	c.askLocked(transcript)
}

func (c *Controller) callSpeechToText(ctx context.Context, payload audio.Payload, tag language.Tag) (string, error) {
	if c.speechToText == nil {
		return "", failures.NewServiceError("speech-to-text", "transcribe", errNoSpeechToText)
	}

	requestCtx, cancel := withRequestTimeout(ctx, c.requestTimeout)
	defer cancel()

	transcript, err := c.speechToText.Transcribe(requestCtx, payload, speechtotext.WithLanguage(tag))
	if err != nil {
		return "", asServiceError("speech-to-text", "transcribe", err)
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", failures.ErrNoSpeechDetected
	}
	return transcript, nil
}

// askLocked appends the question as a user turn and starts the dialogue
// stage.
func (c *Controller) askLocked(question string) {
	turns := c.session.transcript.Turns()
	c.appendTurnLocked(conversations.NewUserTurn(question))
	c.transition(ModeThinking)

	go c.ask(c.session.ctx, c.generation, question, c.session.subject, c.session.language, turns)
}

func (c *Controller) ask(ctx context.Context, gen uint64, question, subject string, tag language.Tag, history []conversations.Turn) {
	ctx, span := tracer.Start(ctx, "ask question")
	span.SetAttributes(attribute.String("speech.language", tag.String()))

	answer, err := c.callDialogue(ctx, question, subject, tag, history)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.mode != ModeThinking {
		return
	}

	if err != nil {
		logger.Warn("dialogue failed, answering with apology", "error", err)
		answer = tag.Strings().Apology
	}
	c.respondLocked(answer)
}

func (c *Controller) callDialogue(ctx context.Context, question, subject string, tag language.Tag, history []conversations.Turn) (string, error) {
	if c.dialogue == nil {
		return "", failures.NewServiceError("dialogue", "ask", errNoDialogue)
	}

	requestCtx, cancel := withRequestTimeout(ctx, c.requestTimeout)
	defer cancel()

	answer, err := c.dialogue.Ask(requestCtx, question,
		dialogue.WithSubject(subject),
		dialogue.WithLanguage(tag),
		dialogue.WithHistory(history),
	)
	if err != nil {
		return "", asServiceError("dialogue", "ask", err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", failures.NewServiceError("dialogue", "ask", errEmptyAnswer)
	}
	return answer, nil
}

// respondLocked appends the answer as an assistant turn and speaks it.
func (c *Controller) respondLocked(answer string) {
	c.appendTurnLocked(conversations.NewAssistantTurn(answer))
	c.transition(ModeSpeaking)

	gen := c.generation
	strategy := c.output.speak(c.session.ctx, answer, c.session.language, func() {
		c.finishSpeaking(gen)
	})
	c.emit(events.NewPlaybackStarted(answer, string(strategy)))
}

func (c *Controller) finishSpeaking(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.mode != ModeSpeaking {
		return
	}

	c.emit(events.NewPlaybackEnded(false))
	c.transition(ModeIdle)
}

func (c *Controller) interruptSpeechLocked() {
	if c.output.interrupt() {
		c.emit(events.NewPlaybackEnded(true))
	}
}

func (c *Controller) appendTurnLocked(turn conversations.Turn) {
	c.session.transcript.Append(turn)
	c.emit(events.NewTurnAppended(turn))
}

// transition moves the controller to the given mode. Edges outside of the
// transition table are programming errors and panic.
func (c *Controller) transition(to Mode) {
	from := c.mode
	if !from.canTransitionTo(to) {
		panic(fmt.Sprintf("illegal mode transition from %s to %s", from, to))
	}

	c.mode = to
	logger.Debug("mode changed", "from", from.String(), "to", to.String())
	c.emit(events.NewModeChanged(from.String(), to.String()))
}

func (c *Controller) nextGeneration() uint64 {
	c.generation++
	return c.generation
}

func (c *Controller) checkOpenLocked() error {
	if c.session != nil {
		return nil
	}
	if c.closed {
		return ErrClosed
	}
	return ErrNotOpen
}

// emit is safe to call without holding mu.
func (c *Controller) emit(event events.Event) {
	c.dispatcher.Load().Emit(event)
}

// asServiceError keeps errors from the failure taxonomy as they are and
// reports anything else, such as a request timeout, as a service error.
func asServiceError(service, op string, err error) error {
	if failures.KindOf(err) != failures.KindUnknown {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return failures.NewServiceError(service, op, fmt.Errorf("request timed out: %w", err))
	}
	return failures.NewServiceError(service, op, err)
}
