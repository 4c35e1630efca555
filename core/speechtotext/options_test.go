package speechtotext

import (
	"testing"

	"github.com/koscakluka/ema-voice/core/language"
)

func TestNewTranscriptionOptionsDefaultsToEnglish(t *testing.T) {
	if got := NewTranscriptionOptions().Language; got != language.English {
		t.Fatalf("expected default language %q, got %q", language.English, got)
	}
}

func TestWithLanguageIgnoresUnsupportedTags(t *testing.T) {
	options := NewTranscriptionOptions(WithLanguage(language.Telugu), WithLanguage("XX"))
	if options.Language != language.Telugu {
		t.Fatalf("expected language %q, got %q", language.Telugu, options.Language)
	}
}
