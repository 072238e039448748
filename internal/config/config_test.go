package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/speedtype/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Test.Mode != nil || cfg.Behavior.QuickRestart != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := writeConfig(t, `
[test]
mode = "Words"
words = 50
lang = "de"
numbers = true
difficulty = "master"
quote-length = "thicc"
weak-factor = 1.5

[behavior]
quick-end = true
stop-on-error = "letter"
confidence = "full"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Test.Mode == nil || *cfg.Test.Mode != model.ModeWords {
		t.Fatalf("unexpected mode: %v", cfg.Test.Mode)
	}
	if cfg.Test.Words == nil || *cfg.Test.Words != 50 {
		t.Fatalf("unexpected words: %v", cfg.Test.Words)
	}
	if cfg.Test.Time != nil {
		t.Fatalf("unset key must stay nil")
	}
	if *cfg.Test.Difficulty != model.DifficultyMaster || *cfg.Test.QuoteLength != model.QuoteThicc {
		t.Fatalf("unexpected enums: %v %v", *cfg.Test.Difficulty, *cfg.Test.QuoteLength)
	}
	if *cfg.Behavior.StopOnError != model.StopLetter || *cfg.Behavior.Confidence != model.ConfidenceFull {
		t.Fatalf("unexpected behavior: %+v", cfg.Behavior)
	}
	if !*cfg.Behavior.QuickEnd || !*cfg.Test.Numbers || *cfg.Test.WeakFactor != 1.5 {
		t.Fatalf("unexpected values: %+v", cfg)
	}
}

func TestLoadConfigRejectsUnknownEnum(t *testing.T) {
	path := writeConfig(t, "[test]\nmode = \"sprint\"\n")
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	if !strings.Contains(err.Error(), `"sprint"`) {
		t.Fatalf("expected offending value in error, got %v", err)
	}
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, "[test]\nspeed = 3\n")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "test.speed") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestTemplateDecodesWhenUncommented(t *testing.T) {
	var lines []string
	for _, line := range strings.Split(Template(), "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, " = ") {
			line = strings.TrimPrefix(line, "# ")
		}
		lines = append(lines, line)
	}
	var cfg FileConfig
	if _, err := toml.Decode(strings.Join(lines, "\n"), &cfg); err != nil {
		t.Fatalf("template must decode: %v", err)
	}
	if cfg.Test.Mode == nil || *cfg.Test.Mode != model.ModeTime {
		t.Fatalf("unexpected template mode: %v", cfg.Test.Mode)
	}
	if cfg.Test.Time == nil || *cfg.Test.Time != DefaultTime {
		t.Fatalf("unexpected template time: %v", cfg.Test.Time)
	}
	if cfg.Behavior.QuickRestart == nil || !*cfg.Behavior.QuickRestart {
		t.Fatalf("unexpected template quick-restart: %v", cfg.Behavior.QuickRestart)
	}
}

func TestXDGPaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "cfg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))

	cases := map[string]string{
		DefaultConfigPath():  filepath.Join(dir, "cfg", "speedtype", "config.toml"),
		DefaultWordListDir(): filepath.Join(dir, "cfg", "speedtype", "wordlists"),
		DefaultDBPath():      filepath.Join(dir, "data", "speedtype", "speedtype.db"),
		DefaultLogPath():     filepath.Join(dir, "state", "speedtype", "speedtype.log"),
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("got %q want %q", got, want)
		}
	}
}

func TestXDGFallsBackToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_STATE_HOME", "")
	if got, want := XDGStateHome(), filepath.Join(home, ".local", "state"); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
