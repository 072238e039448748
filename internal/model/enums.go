package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownValue is returned when an enum string is not recognized.
var ErrUnknownValue = errors.New("unknown value")

// CharState classifies one position of a typed word against its source word.
type CharState int

const (
	StatePending CharState = iota
	StateCorrect
	StateIncorrect
	StateExtra
	StateMissed
)

var charStateNames = []string{"pending", "correct", "incorrect", "extra", "missed"}

func (s CharState) String() string { return enumName(charStateNames, int(s)) }

// Mode selects how the word sequence is produced and when a run ends.
type Mode int

const (
	ModeTime Mode = iota
	ModeWords
	ModeQuote
	ModeZen
	ModeCustom
)

var modeNames = []string{"time", "words", "quote", "zen", "custom"}

func (m Mode) String() string { return enumName(modeNames, int(m)) }

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	i, err := parseEnum("mode", modeNames, s)
	return Mode(i), err
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Difficulty adds restart rules on top of normal typing.
type Difficulty int

const (
	DifficultyNormal Difficulty = iota
	// DifficultyExpert restarts on an incorrectly submitted word.
	DifficultyExpert
	// DifficultyMaster restarts on any incorrect keystroke.
	DifficultyMaster
)

var difficultyNames = []string{"normal", "expert", "master"}

func (d Difficulty) String() string { return enumName(difficultyNames, int(d)) }

// ParseDifficulty parses a difficulty name.
func ParseDifficulty(s string) (Difficulty, error) {
	i, err := parseEnum("difficulty", difficultyNames, s)
	return Difficulty(i), err
}

// MarshalText implements encoding.TextMarshaler.
func (d Difficulty) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Difficulty) UnmarshalText(b []byte) error {
	v, err := ParseDifficulty(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Confidence restricts backspace use.
type Confidence int

const (
	ConfidenceOff Confidence = iota
	// ConfidencePartial keeps backspace inside the current word.
	ConfidencePartial
	// ConfidenceFull disables backspace.
	ConfidenceFull
)

var confidenceNames = []string{"off", "partial", "full"}

func (c Confidence) String() string { return enumName(confidenceNames, int(c)) }

// ParseConfidence parses a confidence mode name.
func ParseConfidence(s string) (Confidence, error) {
	i, err := parseEnum("confidence", confidenceNames, s)
	return Confidence(i), err
}

// MarshalText implements encoding.TextMarshaler.
func (c Confidence) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Confidence) UnmarshalText(b []byte) error {
	v, err := ParseConfidence(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// StopOnError swallows incorrect input instead of recording it.
type StopOnError int

const (
	StopOff StopOnError = iota
	StopLetter
	StopWord
)

var stopNames = []string{"off", "letter", "word"}

func (s StopOnError) String() string { return enumName(stopNames, int(s)) }

// ParseStopOnError parses a stop-on-error name.
func ParseStopOnError(s string) (StopOnError, error) {
	i, err := parseEnum("stop-on-error", stopNames, s)
	return StopOnError(i), err
}

// MarshalText implements encoding.TextMarshaler.
func (s StopOnError) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *StopOnError) UnmarshalText(b []byte) error {
	v, err := ParseStopOnError(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// QuoteLength is the length class used to filter the quote pool.
type QuoteLength int

const (
	QuoteMedium QuoteLength = iota
	QuoteShort
	QuoteLong
	// QuoteThicc selects from the long pool.
	QuoteThicc
)

var quoteLengthNames = []string{"medium", "short", "long", "thicc"}

func (q QuoteLength) String() string { return enumName(quoteLengthNames, int(q)) }

// ParseQuoteLength parses a quote length class.
func ParseQuoteLength(s string) (QuoteLength, error) {
	i, err := parseEnum("quote length", quoteLengthNames, s)
	return QuoteLength(i), err
}

// MarshalText implements encoding.TextMarshaler.
func (q QuoteLength) MarshalText() ([]byte, error) { return []byte(q.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (q *QuoteLength) UnmarshalText(b []byte) error {
	v, err := ParseQuoteLength(string(b))
	if err != nil {
		return err
	}
	*q = v
	return nil
}

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("invalid(%d)", i)
	}
	return names[i]
}

func parseEnum(kind string, names []string, s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range names {
		if name == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s %q (want one of %s): %w", kind, s, strings.Join(names, ", "), ErrUnknownValue)
}
