package orchestration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/koscakluka/ema-voice/core/audio"
	"github.com/koscakluka/ema-voice/core/conversations"
	"github.com/koscakluka/ema-voice/core/dialogue"
	"github.com/koscakluka/ema-voice/core/events"
	"github.com/koscakluka/ema-voice/core/language"
	"github.com/koscakluka/ema-voice/core/speechtotext"
	"github.com/koscakluka/ema-voice/core/texttospeech"
)

func waitFor(t *testing.T, description string, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", description)
}

func viableChunk() []byte { return make([]byte, DefaultMinViableBytes) }

type fakeCaptureDevice struct {
	openErr error
	// openGate, when set, holds Open until it is closed.
	openGate chan struct{}
	// chunks are delivered while the device opens.
	chunks [][]byte

	mu      sync.Mutex
	onChunk func([]byte)
	opens   int
	closes  int
}

func (d *fakeCaptureDevice) EncodingInfo() audio.EncodingInfo { return audio.GetDefaultEncodingInfo() }

func (d *fakeCaptureDevice) Open(ctx context.Context, onChunk func([]byte)) error {
	d.mu.Lock()
	d.opens++
	gate := d.openGate
	d.mu.Unlock()

	if gate != nil {
		<-gate
	}

	d.mu.Lock()
	if d.openErr != nil {
		d.mu.Unlock()
		return d.openErr
	}
	d.onChunk = onChunk
	chunks := d.chunks
	d.mu.Unlock()

	for _, chunk := range chunks {
		onChunk(chunk)
	}
	return nil
}

func (d *fakeCaptureDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closes++
	d.onChunk = nil
	return nil
}

func (d *fakeCaptureDevice) feed(chunk []byte) {
	d.mu.Lock()
	onChunk := d.onChunk
	d.mu.Unlock()

	if onChunk != nil {
		onChunk(chunk)
	}
}

func (d *fakeCaptureDevice) counts() (opens, closes int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens, d.closes
}

type fakeSpeechToText struct {
	transcript string
	err        error
	// gate, when set, holds Transcribe until it is closed or ctx is done.
	gate chan struct{}

	mu        sync.Mutex
	calls     int
	payloads  []audio.Payload
	languages []language.Tag
}

func (f *fakeSpeechToText) Transcribe(ctx context.Context, payload audio.Payload, opts ...speechtotext.TranscriptionOption) (string, error) {
	options := speechtotext.NewTranscriptionOptions(opts...)

	f.mu.Lock()
	f.calls++
	f.payloads = append(f.payloads, payload)
	f.languages = append(f.languages, options.Language)
	f.mu.Unlock()

	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.transcript, f.err
}

func (f *fakeSpeechToText) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeDialogue struct {
	answer string
	err    error
	// gate, when set, holds Ask until it is closed. Context cancellation is
	// deliberately ignored so late answers can be observed.
	gate chan struct{}

	mu        sync.Mutex
	questions []string
	subjects  []string
	languages []language.Tag
	histories [][]conversations.Turn
	returned  int
}

func (f *fakeDialogue) Ask(ctx context.Context, question string, opts ...dialogue.AskOption) (string, error) {
	options := dialogue.NewAskOptions(opts...)

	f.mu.Lock()
	f.questions = append(f.questions, question)
	f.subjects = append(f.subjects, options.Subject)
	f.languages = append(f.languages, options.Language)
	f.histories = append(f.histories, options.History)
	f.mu.Unlock()

	if f.gate != nil {
		<-f.gate
	}

	f.mu.Lock()
	f.returned++
	f.mu.Unlock()
	return f.answer, f.err
}

func (f *fakeDialogue) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.questions)
}

func (f *fakeDialogue) returnedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.returned
}

type fakeRemoteSynthesizer struct {
	err  error
	clip *audio.Clip

	mu        sync.Mutex
	texts     []string
	languages []language.Tag
}

func (f *fakeRemoteSynthesizer) Synthesize(ctx context.Context, text string, opts ...texttospeech.TextToSpeechOption) (*audio.Clip, error) {
	options := texttospeech.NewTextToSpeechOptions(opts...)

	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.languages = append(f.languages, options.Language)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if f.clip != nil {
		return f.clip, nil
	}
	return &audio.Clip{PCM: []byte{1, 2, 3, 4}, Encoding: audio.GetDefaultEncodingInfo()}, nil
}

func (f *fakeRemoteSynthesizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.texts)
}

type fakeLocalSynthesizer struct {
	// block keeps Speak running until its context is cancelled.
	block bool

	mu        sync.Mutex
	texts     []string
	languages []language.Tag
	cancelled int
}

func (f *fakeLocalSynthesizer) Speak(ctx context.Context, text string, opts ...texttospeech.TextToSpeechOption) error {
	options := texttospeech.NewTextToSpeechOptions(opts...)

	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.languages = append(f.languages, options.Language)
	f.mu.Unlock()

	if !f.block {
		return nil
	}

	<-ctx.Done()
	f.mu.Lock()
	f.cancelled++
	f.mu.Unlock()
	return ctx.Err()
}

func (f *fakeLocalSynthesizer) spoken() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

func (f *fakeLocalSynthesizer) cancelledCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled
}

type fakeClipPlayer struct {
	err error

	mu    sync.Mutex
	plays int
}

func (f *fakeClipPlayer) Play(ctx context.Context, clip *audio.Clip) error {
	f.mu.Lock()
	f.plays++
	f.mu.Unlock()
	return f.err
}

func (f *fakeClipPlayer) playCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.plays
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) count(kind events.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, event := range r.events {
		if event.Kind() == kind {
			count++
		}
	}
	return count
}

func (r *eventRecorder) modeChanges() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var changes []string
	for _, event := range r.events {
		if changed, ok := event.(events.ModeChanged); ok {
			changes = append(changes, changed.From+"->"+changed.To)
		}
	}
	return changes
}

func (r *eventRecorder) snapshot() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}
