// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/speedtype/internal/model"
)

// Defaults used by the CLI flags and the config template.
const (
	DefaultMode        = "time"
	DefaultTime        = 30
	DefaultWords       = 25
	DefaultLang        = "en"
	DefaultDifficulty  = "normal"
	DefaultQuoteLength = "medium"
	DefaultStopOnError = "off"
	DefaultConfidence  = "off"
	DefaultWeakTop     = 8
	DefaultWeakFactor  = 2.0
	DefaultWeakWindow  = 20
	DefaultCurveWindow = 10
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Test     TestConfig     `toml:"test"`
	Behavior BehaviorConfig `toml:"behavior"`
}

// TestConfig maps settings that shape the generated text.
type TestConfig struct {
	Mode        *model.Mode        `toml:"mode"`
	Time        *int               `toml:"time"`
	Words       *int               `toml:"words"`
	Lang        *string            `toml:"lang"`
	Punctuation *bool              `toml:"punctuation"`
	Numbers     *bool              `toml:"numbers"`
	Difficulty  *model.Difficulty  `toml:"difficulty"`
	QuoteLength *model.QuoteLength `toml:"quote-length"`
	FocusWeak   *bool              `toml:"focus-weak"`
	WeakTop     *int               `toml:"weak-top"`
	WeakFactor  *float64           `toml:"weak-factor"`
	WeakWindow  *int               `toml:"weak-window"`
}

// BehaviorConfig maps keystroke behavior settings.
type BehaviorConfig struct {
	QuickRestart *bool              `toml:"quick-restart"`
	QuickEnd     *bool              `toml:"quick-end"`
	StopOnError  *model.StopOnError `toml:"stop-on-error"`
	Confidence   *model.Confidence  `toml:"confidence"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Template returns a commented config file listing every key with its default.
func Template() string {
	return fmt.Sprintf(`# speedtype configuration
# Uncomment a value to enable it. CLI flags override config values.

[test]
# mode = %q            # time, words, quote, zen or custom
# time = %d               # Seconds per time-mode test
# words = %d              # Words per words-mode test
# lang = %q              # Language code
# punctuation = false     # Append random punctuation to words
# numbers = false         # Replace some words with numbers
# difficulty = %q    # normal, expert (fail on wrong word) or master (fail on wrong key)
# quote-length = %q  # short, medium, long or thicc
# focus-weak = false      # Bias words toward weak characters
# weak-top = %d            # Number of weak characters to focus on
# weak-factor = %.1f       # Weight factor for weak characters
# weak-window = %d        # Number of recent results to compute weak chars

[behavior]
# quick-restart = true    # Tab then Enter restarts
# quick-end = false       # End as soon as the last word is started
# stop-on-error = %q     # off, letter or word
# confidence = %q        # off, partial (no going back a word) or full (no backspace)
`,
		DefaultMode,
		DefaultTime,
		DefaultWords,
		DefaultLang,
		DefaultDifficulty,
		DefaultQuoteLength,
		DefaultWeakTop,
		DefaultWeakFactor,
		DefaultWeakWindow,
		DefaultStopOnError,
		DefaultConfidence,
	)
}
