package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/speedtype/internal/config"
	"github.com/verte-zerg/speedtype/internal/diff"
	"github.com/verte-zerg/speedtype/internal/generator"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/stats"
)

func defaultFlags() testFlags {
	return testFlags{
		mode:         config.DefaultMode,
		time:         config.DefaultTime,
		words:        config.DefaultWords,
		lang:         config.DefaultLang,
		difficulty:   config.DefaultDifficulty,
		quoteLength:  config.DefaultQuoteLength,
		quickRestart: true,
		stopOnError:  config.DefaultStopOnError,
		confidence:   config.DefaultConfidence,
		weakTop:      config.DefaultWeakTop,
		weakFactor:   config.DefaultWeakFactor,
		weakWindow:   config.DefaultWeakWindow,
	}
}

func TestParseTestFlagsDefaults(t *testing.T) {
	opts, err := parseTestFlags(defaultFlags())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.cfg.Mode != model.ModeTime || opts.cfg.TimeLimit != 30 || opts.cfg.Lang != "en" {
		t.Fatalf("unexpected config: %+v", opts.cfg)
	}
	if !opts.settings.QuickRestart || opts.settings.StopOnError != model.StopOff {
		t.Fatalf("unexpected settings: %+v", opts.settings)
	}
}

func TestParseTestFlagsRejectsUnknownEnum(t *testing.T) {
	f := defaultFlags()
	f.difficulty = "insane"
	_, err := parseTestFlags(f)
	if !errors.Is(err, model.ErrUnknownValue) {
		t.Fatalf("expected unknown value error, got %v", err)
	}
}

func TestParseTestFlagsValidation(t *testing.T) {
	cases := map[string]func(*testFlags){
		"--time":        func(f *testFlags) { f.time = 0 },
		"--words":       func(f *testFlags) { f.words = -1 },
		"--text":        func(f *testFlags) { f.mode = "custom" },
		"--weak-factor": func(f *testFlags) { f.weakFactor = -1 },
		"--lang":        func(f *testFlags) { f.lang = "  " },
	}
	for flag, mutate := range cases {
		f := defaultFlags()
		mutate(&f)
		_, err := parseTestFlags(f)
		if err == nil || !strings.Contains(err.Error(), flag) {
			t.Fatalf("%s: expected validation error, got %v", flag, err)
		}
	}
}

func TestMergeFileConfigKeepsChangedFlags(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.Flags().Set("time", "60"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	mode := model.ModeWords
	words := 50
	fileTime := 45
	stop := model.StopWord
	fileCfg := config.FileConfig{
		Test:     config.TestConfig{Mode: &mode, Words: &words, Time: &fileTime},
		Behavior: config.BehaviorConfig{StopOnError: &stop},
	}

	f := defaultFlags()
	mergeFileConfig(cmd, &f, fileCfg)
	if f.mode != "words" || f.words != 50 || f.stopOnError != "word" {
		t.Fatalf("expected config values to apply, got %+v", f)
	}
	if f.time != config.DefaultTime {
		t.Fatalf("expected changed flag to win over config, got %d", f.time)
	}
}

func TestSuggestLangs(t *testing.T) {
	got := suggestLangs("en", []string{"de", "en", "es"}, 3)
	if len(got) != 1 || got[0] != "en" {
		t.Fatalf("unexpected suggestions: %v", got)
	}
	if got := suggestLangs("xyz", []string{"en"}, 3); len(got) != 0 {
		t.Fatalf("expected no suggestions, got %v", got)
	}
}

func TestLanguageErrorSuggests(t *testing.T) {
	err := languageError("eng", []string{"en", "english"}, generator.ErrUnknownLanguage)
	if !errors.Is(err, generator.ErrUnknownLanguage) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
	if !strings.Contains(err.Error(), "Did you mean: english") {
		t.Fatalf("expected suggestion, got %v", err)
	}
}

func TestEnsureConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speedtype", "config.toml")
	if err := ensureConfigFile(path); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != config.Template() {
		t.Fatalf("expected template contents")
	}
	if err := os.WriteFile(path, []byte("[test]\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ensureConfigFile(path); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "[test]\n" {
		t.Fatalf("expected existing config to be kept")
	}
}

func TestFilterFlags(t *testing.T) {
	cfg, err := filterFlags{lang: "EN", mode: "zen", since: "2024-01-02", last: 3}.statsConfig()
	if err != nil {
		t.Fatalf("stats config: %v", err)
	}
	if cfg.Lang != "en" || cfg.Mode != "zen" || cfg.Last != 3 || cfg.Since == nil {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if _, err := (filterFlags{mode: "sprint"}).statsConfig(); err == nil {
		t.Fatalf("expected mode error")
	}
	if _, err := (filterFlags{since: "01/02/2024"}).statsConfig(); err == nil {
		t.Fatalf("expected since error")
	}
}

type fakeLoader struct {
	results map[int64]model.Result
}

func (f fakeLoader) ListResults(context.Context, model.StatsConfig) ([]model.ResultSummary, error) {
	return []model.ResultSummary{{ResultID: 1}, {ResultID: 2}}, nil
}

func (f fakeLoader) GetResult(_ context.Context, id int64) (model.Result, error) {
	r, ok := f.results[id]
	if !ok {
		return model.Result{}, errors.New("missing")
	}
	return r, nil
}

func sampleResult(id string, wpm int) model.Result {
	ended := time.Date(2024, 5, 1, 10, 0, 30, 0, time.UTC)
	return model.Result{
		ID:        id,
		StartedAt: ended.Add(-30 * time.Second),
		EndedAt:   ended,
		Config:    model.Config{Mode: model.ModeTime, TimeLimit: 30, WordLimit: 25, Lang: "en"},
		Stats:     model.Stats{WPM: wpm, RawWPM: wpm + 2, Accuracy: 97.5, Correct: 100, Elapsed: 30},
		Samples:   []model.WpmSample{{Elapsed: 1, WPM: wpm}},
		History:   []model.CompletedWord{diff.Word("hello", "helo", ended, 0)},
	}
}

func TestLoadExport(t *testing.T) {
	loader := fakeLoader{results: map[int64]model.Result{1: sampleResult("a", 50), 2: sampleResult("b", 60)}}
	records, err := loadExport(context.Background(), loader, model.StatsConfig{}, true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 2 || records[1].ID != "b" || records[1].WPM != 60 {
		t.Fatalf("unexpected records: %+v", records)
	}
	rec := records[0]
	if rec.Mode != "time" || rec.TimeLimit != 30 || rec.WordLimit != 0 {
		t.Fatalf("unexpected mode fields: %+v", rec)
	}
	if len(rec.Words) != 1 || rec.Words[0].States != "cccim" {
		t.Fatalf("unexpected words: %+v", rec.Words)
	}

	records, err = loadExport(context.Background(), loader, model.StatsConfig{}, false)
	if err != nil || len(records[0].Words) != 0 {
		t.Fatalf("expected words to be omitted, err=%v", err)
	}

	if _, err := loadExport(context.Background(), fakeLoader{}, model.StatsConfig{}, true); err == nil {
		t.Fatalf("expected load error")
	}
}

func TestWriteExportYAML(t *testing.T) {
	var buf bytes.Buffer
	records := []exportRecord{newExportRecord(sampleResult("a", 50), true)}
	if err := writeExport(&buf, "yaml", records); err != nil {
		t.Fatalf("write: %v", err)
	}
	var decoded []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 1 || decoded[0]["id"] != "a" || decoded[0]["wpm"] != 50 {
		t.Fatalf("unexpected yaml: %s", buf.String())
	}
}

func TestWriteExportJSON(t *testing.T) {
	var buf bytes.Buffer
	records := []exportRecord{newExportRecord(sampleResult("a", 50), false)}
	if err := writeExport(&buf, "json", records); err != nil {
		t.Fatalf("write: %v", err)
	}
	var decoded []exportRecord
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Chars.Correct != 100 || decoded[0].RawWPM != 52 {
		t.Fatalf("unexpected json: %s", buf.String())
	}
	if strings.Contains(buf.String(), `"words"`) {
		t.Fatalf("expected words to be omitted: %s", buf.String())
	}
}

func TestWritePlainHistory(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	if err := writePlainHistory(&buf, stats.Report{}, 10, 80, now); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != "No results found.\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}

	buf.Reset()
	report := stats.Report{
		Results: []model.ResultSummary{
			{EndedAt: now.Add(-2 * time.Hour), Mode: model.ModeWords, Lang: "en", WPM: 40, Accuracy: 95, Elapsed: 20},
		},
		CharAggsWindow: []model.CharAggregate{{Char: "a", Correct: 3, Incorrect: 1}},
	}
	if err := writePlainHistory(&buf, report, 10, 80, now); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Tests: 1", "Per-Character", "Recent", "2 hours ago", "40 WPM"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 3); got != "abc" {
		t.Fatalf("unexpected truncate: %q", got)
	}
	if got := truncate("abc", 0); got != "abc" {
		t.Fatalf("unexpected truncate: %q", got)
	}
}
