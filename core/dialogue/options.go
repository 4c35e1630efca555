// Package dialogue defines how a user question is answered for a subject.
package dialogue

import (
	"github.com/jinzhu/copier"
	"github.com/koscakluka/ema-voice/core/conversations"
	"github.com/koscakluka/ema-voice/core/language"
)

type AskOptions struct {
	// Subject is the opaque context string the answer is scoped to, passed
	// through unchanged.
	Subject  string
	Language language.Tag
	// History holds the turns that preceded the question, oldest first.
	History []conversations.Turn
}

type AskOption func(*AskOptions)

// NewAskOptions applies opts on top of the defaults.
func NewAskOptions(opts ...AskOption) AskOptions {
	options := AskOptions{Language: language.English}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func WithSubject(subject string) AskOption {
	return func(o *AskOptions) { o.Subject = subject }
}

func WithLanguage(tag language.Tag) AskOption {
	return func(o *AskOptions) {
		if !tag.IsValid() {
			return
		}
		o.Language = tag
	}
}

// WithHistory passes a copy of turns, so later changes by the caller are
// not observed by the client.
func WithHistory(turns []conversations.Turn) AskOption {
	return func(o *AskOptions) {
		history := []conversations.Turn{}
		if err := copier.Copy(&history, &turns); err != nil {
			history = append(history, turns...)
		}
		o.History = history
	}
}
