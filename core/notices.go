package orchestration

import (
	"sync"
	"time"

	"github.com/koscakluka/ema-voice/core/events"
	"github.com/koscakluka/ema-voice/core/language"
)

// Notice is a transient, auto-dismissing message shown to the user.
type Notice string

const (
	NoticeNone                Notice = ""
	NoticeNoAudio             Notice = "no_audio"
	NoticeNoSpeech            Notice = "no_speech"
	NoticeTranscriptionFailed Notice = "transcription_failed"
	NoticeMicDenied           Notice = "mic_denied"
)

// Text returns the localized copy of the notice.
func (n Notice) Text(tag language.Tag) string {
	localized := tag.Strings()
	switch n {
	case NoticeNoAudio:
		return localized.NoAudio
	case NoticeNoSpeech:
		return localized.NoSpeech
	case NoticeTranscriptionFailed:
		return localized.CouldNotTranscribe
	case NoticeMicDenied:
		return localized.MicDenied
	}
	return ""
}

func defaultNoticeDurations() map[Notice]time.Duration {
	return map[Notice]time.Duration{
		NoticeNoAudio:             3 * time.Second,
		NoticeMicDenied:           3 * time.Second,
		NoticeNoSpeech:            2500 * time.Millisecond,
		NoticeTranscriptionFailed: 2500 * time.Millisecond,
	}
}

// noticeBoard holds at most one notice and dismisses it after its duration.
// A newer notice replaces the current one.
type noticeBoard struct {
	durations map[Notice]time.Duration
	emit      func(events.Event)

	mu     sync.Mutex
	notice Notice
	text   string
	seq    uint64
	timer  *time.Timer
}

func newNoticeBoard(durations map[Notice]time.Duration, emit func(events.Event)) *noticeBoard {
	if emit == nil {
		emit = func(events.Event) {}
	}
	return &noticeBoard{durations: durations, emit: emit}
}

func (b *noticeBoard) show(notice Notice, tag language.Tag) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.dismissLocked()

	b.seq++
	seq := b.seq
	b.notice = notice
	b.text = notice.Text(tag)
	b.emit(events.NewNoticeShown(string(notice), b.text))

	duration := b.durations[notice]
	if duration <= 0 {
		duration = defaultNoticeDurations()[notice]
	}
	b.timer = time.AfterFunc(duration, func() { b.expire(seq) })
}

func (b *noticeBoard) expire(seq uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.seq != seq {
		return
	}
	b.dismissLocked()
}

// clear dismisses the current notice right away.
func (b *noticeBoard) clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	b.dismissLocked()
}

func (b *noticeBoard) current() (Notice, string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.notice, b.text
}

func (b *noticeBoard) dismissLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if b.notice == NoticeNone {
		return
	}

	b.emit(events.NewNoticeCleared(string(b.notice)))
	b.notice = NoticeNone
	b.text = ""
}
