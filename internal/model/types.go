// Package model defines shared data structures.
package model

import "time"

// Config defines the test settings chosen before a run starts.
type Config struct {
	Mode        Mode
	TimeLimit   int
	WordLimit   int
	Lang        string
	Punctuation bool
	Numbers     bool
	Difficulty  Difficulty
	QuoteLength QuoteLength
}

// Settings defines keystroke behavior that does not affect the generated text.
type Settings struct {
	QuickRestart bool
	QuickEnd     bool
	StopOnError  StopOnError
	Confidence   Confidence
}

// WeakFocus biases generated words toward characters the user struggles with.
type WeakFocus struct {
	Enabled bool
	Top     int
	Factor  float64
	Window  int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Lang        string
	Mode        string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// CompletedWord is a frozen record of one submitted word.
type CompletedWord struct {
	Word        string
	Typed       string
	States      []CharState
	CompletedAt time.Time
	Duration    time.Duration
}

// WpmSample is one periodic measurement taken while a run is active.
type WpmSample struct {
	Elapsed  float64
	WPM      int
	RawWPM   int
	Accuracy float64
}

// Stats is the final report of a run.
type Stats struct {
	WPM         int
	RawWPM      int
	Accuracy    float64
	Consistency int
	Correct     int
	Incorrect   int
	Extra       int
	Missed      int
	Elapsed     int
}

// Result captures a completed run. It is never mutated after creation.
type Result struct {
	ID          string
	CreatedAt   time.Time
	StartedAt   time.Time
	EndedAt     time.Time
	Config      Config
	Settings    Settings
	Stats       Stats
	Samples     []WpmSample
	History     []CompletedWord
	QuoteSource string
}

// CharAggregate aggregates per-character outcomes, keyed by the expected character.
type CharAggregate struct {
	Char      string
	Correct   int
	Incorrect int
	Missed    int
}

// ResultSummary is a stored result without its word history.
type ResultSummary struct {
	ResultID    int64
	UUID        string
	EndedAt     time.Time
	Mode        Mode
	Lang        string
	WPM         int
	RawWPM      int
	Accuracy    float64
	Consistency int
	Elapsed     int
}
