// Package language enumerates the conversation languages the voice
// controller supports and the localized copy it shows or speaks for them.
package language

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported is returned by [Parse] for tags outside the supported set.
var ErrUnsupported = errors.New("unsupported language")

// Tag is the application-level language code sent to the backend services.
type Tag string

const (
	English Tag = "EN"
	Hindi   Tag = "HI"
	Telugu  Tag = "TE"
)

var supported = []Tag{English, Hindi, Telugu}

var names = map[Tag]string{
	English: "English",
	Hindi:   "Hindi",
	Telugu:  "Telugu",
}

var bcp47 = map[Tag]string{
	English: "en-IN",
	Hindi:   "hi-IN",
	Telugu:  "te-IN",
}

// Supported returns the supported tags in display order.
func Supported() []Tag {
	tags := make([]Tag, len(supported))
	copy(tags, supported)
	return tags
}

// Parse accepts an application code ("EN", "hi") or a BCP 47 tag
// ("te-IN", "en") and returns the matching Tag.
func Parse(value string) (Tag, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	if base, _, found := strings.Cut(normalized, "-"); found {
		normalized = base
	}

	tag := Tag(normalized)
	if !tag.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, value)
	}
	return tag, nil
}

func (t Tag) String() string { return string(t) }

func (t Tag) IsValid() bool {
	_, ok := bcp47[t]
	return ok
}

// BCP47 returns the regional tag used by speech engines, e.g. "hi-IN".
func (t Tag) BCP47() string {
	if tag, ok := bcp47[t]; ok {
		return tag
	}
	return bcp47[English]
}

// Name returns the English name of the language, e.g. "Telugu".
func (t Tag) Name() string {
	if name, ok := names[t]; ok {
		return name
	}
	return names[English]
}

// Base returns the lowercase ISO-639-1 code, e.g. "te".
func (t Tag) Base() string {
	base, _, _ := strings.Cut(t.BCP47(), "-")
	return base
}

// Next cycles through the supported tags, wrapping around at the end.
func (t Tag) Next() Tag {
	for i, tag := range supported {
		if tag == t {
			return supported[(i+1)%len(supported)]
		}
	}
	return English
}
