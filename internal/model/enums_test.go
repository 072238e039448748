package model

import (
	"errors"
	"testing"
)

func TestParseModeRoundTrip(t *testing.T) {
	for _, name := range modeNames {
		m, err := ParseMode(name)
		if err != nil {
			t.Fatalf("parse %q: %v", name, err)
		}
		if m.String() != name {
			t.Fatalf("expected %q, got %q", name, m.String())
		}
	}
}

func TestParseRejectsUnknown(t *testing.T) {
	if _, err := ParseMode("marathon"); !errors.Is(err, ErrUnknownValue) {
		t.Fatalf("expected ErrUnknownValue, got %v", err)
	}
	if _, err := ParseDifficulty("insane"); !errors.Is(err, ErrUnknownValue) {
		t.Fatalf("expected ErrUnknownValue, got %v", err)
	}
	var c Confidence
	if err := c.UnmarshalText([]byte("sometimes")); !errors.Is(err, ErrUnknownValue) {
		t.Fatalf("expected ErrUnknownValue, got %v", err)
	}
}

func TestParseIsCaseInsensitive(t *testing.T) {
	d, err := ParseDifficulty(" Master ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d != DifficultyMaster {
		t.Fatalf("expected master, got %v", d)
	}
}

func TestInvalidEnumString(t *testing.T) {
	if got := CharState(42).String(); got != "invalid(42)" {
		t.Fatalf("unexpected name %q", got)
	}
}
