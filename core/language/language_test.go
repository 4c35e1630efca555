package language

import (
	"errors"
	"testing"
)

func TestParseAcceptsApplicationAndRegionalTags(t *testing.T) {
	cases := map[string]Tag{
		"EN":    English,
		"hi":    Hindi,
		" te ":  Telugu,
		"te-IN": Telugu,
		"en-us": English,
	}

	for input, want := range cases {
		got, err := Parse(input)
		if err != nil {
			t.Fatalf("expected %q to parse, got %v", input, err)
		}
		if got != want {
			t.Fatalf("expected %q to parse as %q, got %q", input, want, got)
		}
	}
}

func TestParseRejectsUnsupportedTag(t *testing.T) {
	if _, err := Parse("fr"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestNextCyclesThroughSupportedTags(t *testing.T) {
	if got := English.Next(); got != Hindi {
		t.Fatalf("expected %q after English, got %q", Hindi, got)
	}
	if got := Telugu.Next(); got != English {
		t.Fatalf("expected wrap around to %q, got %q", English, got)
	}
}

func TestStringsFallBackToEnglish(t *testing.T) {
	if got, want := Tag("XX").Strings().Apology, English.Strings().Apology; got != want {
		t.Fatalf("expected fallback apology %q, got %q", want, got)
	}
	if Hindi.Strings().Apology == English.Strings().Apology {
		t.Fatalf("expected Hindi apology to be localized")
	}
}

func TestBaseIsDerivedFromRegionalTag(t *testing.T) {
	if got := Telugu.Base(); got != "te" {
		t.Fatalf("expected base %q, got %q", "te", got)
	}
	if got := Tag("").BCP47(); got != "en-IN" {
		t.Fatalf("expected invalid tags to default to en-IN, got %q", got)
	}
}

func TestNameFallsBackToEnglish(t *testing.T) {
	if got := Telugu.Name(); got != "Telugu" {
		t.Fatalf("expected %q, got %q", "Telugu", got)
	}
	if got := Tag("XX").Name(); got != "English" {
		t.Fatalf("expected fallback name %q, got %q", "English", got)
	}
}
