package events

const (
	// KindNoticeShown identifies a transient notice being shown.
	KindNoticeShown Kind = "notice.shown"
	// KindNoticeCleared identifies a transient notice being dismissed.
	KindNoticeCleared Kind = "notice.cleared"
)

// NoticeShown carries a localized, transient notice.
type NoticeShown struct {
	Base
	Notice string
	Text   string
}

// NewNoticeShown creates a notice shown event.
func NewNoticeShown(notice, text string) NoticeShown {
	return NoticeShown{Base: NewBase(KindNoticeShown), Notice: notice, Text: text}
}

// NoticeCleared marks the dismissal of a notice.
type NoticeCleared struct {
	Base
	Notice string
}

// NewNoticeCleared creates a notice cleared event.
func NewNoticeCleared(notice string) NoticeCleared {
	return NoticeCleared{Base: NewBase(KindNoticeCleared), Notice: notice}
}
