package tui

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/speedtype/internal/engine"
	"github.com/verte-zerg/speedtype/internal/generator"
	"github.com/verte-zerg/speedtype/internal/input"
	"github.com/verte-zerg/speedtype/internal/model"
)

type fakeStore struct {
	inserted  []model.Result
	chars     [][]model.CharAggregate
	history   []model.ResultSummary
	weak      []model.CharAggregate
	insertErr error
	weakCalls int
}

func (s *fakeStore) InsertResult(_ context.Context, r model.Result, chars []model.CharAggregate) (int64, error) {
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.inserted = append(s.inserted, r)
	s.chars = append(s.chars, chars)
	return int64(len(s.inserted)), nil
}

func (s *fakeStore) ListResults(context.Context, model.StatsConfig) ([]model.ResultSummary, error) {
	return s.history, nil
}

func (s *fakeStore) GetWeakChars(context.Context, int, string) ([]model.CharAggregate, error) {
	s.weakCalls++
	return s.weak, nil
}

func newTestModel(t *testing.T, st *fakeStore, cfg model.Config, settings model.Settings) (*Model, *engine.ManualClock) {
	t.Helper()
	corpus := generator.NewCorpus("", map[string][]string{"en": {"go"}}, nil)
	gen := generator.NewWithSource(corpus, rand.New(rand.NewSource(1)))
	clock := engine.NewManualClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	m, err := NewModel(Options{
		Config:    cfg,
		Settings:  settings,
		Store:     st,
		Generator: gen,
		Clock:     clock,
	})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m, clock
}

func typeText(m *Model, text string) tea.Cmd {
	var cmd tea.Cmd
	for _, field := range strings.Split(text, " ") {
		if field != "" {
			_, c := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(field)})
			if c != nil {
				cmd = c
			}
		}
		_, c := m.Update(tea.KeyMsg{Type: tea.KeySpace})
		if c != nil {
			cmd = c
		}
	}
	return cmd
}

func wordsConfig(n int) model.Config {
	return model.Config{Mode: model.ModeWords, WordLimit: n, Lang: "en"}
}

func TestNewModelRequiresGenerator(t *testing.T) {
	if _, err := NewModel(Options{}); err == nil {
		t.Fatalf("expected error without generator")
	}
}

func TestModelSavesCompletedRun(t *testing.T) {
	st := &fakeStore{}
	m, clock := newTestModel(t, st, wordsConfig(2), model.Settings{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	if cmd == nil {
		t.Fatalf("expected first key to arm the sampler tick")
	}
	clock.Advance(3 * time.Second)
	typeText(m, "o go")

	if m.life.Phase() != input.PhaseComplete {
		t.Fatalf("expected complete phase, got %s", m.life.Phase())
	}
	if len(st.inserted) != 1 {
		t.Fatalf("expected 1 saved result, got %d", len(st.inserted))
	}
	r := st.inserted[0]
	if r.Stats.Correct != 4 || r.Stats.Accuracy != 100 {
		t.Fatalf("unexpected stats: %+v", r.Stats)
	}
	if len(st.chars[0]) == 0 {
		t.Fatalf("expected per-character aggregates to be saved")
	}
	if len(m.history) != 1 || m.history[0].ResultID != 1 {
		t.Fatalf("expected footer history to gain the saved result, got %+v", m.history)
	}
	if !strings.Contains(m.View(), "WPM:") {
		t.Fatalf("expected result screen, got %q", m.View())
	}
}

func TestModelShowsSaveError(t *testing.T) {
	st := &fakeStore{insertErr: errors.New("disk full")}
	m, _ := newTestModel(t, st, wordsConfig(1), model.Settings{})
	typeText(m, "go")
	if m.err == nil || !strings.Contains(m.View(), "disk full") {
		t.Fatalf("expected save error on screen, got %v", m.err)
	}
}

func TestModelTickSamplesActiveRun(t *testing.T) {
	m, clock := newTestModel(t, &fakeStore{}, wordsConfig(5), model.Settings{})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("go")})
	clock.Advance(time.Second)
	m.Update(tickMsg{id: 1})
	if got := len(m.life.Snapshot().Samples); got != 1 {
		t.Fatalf("expected 1 sample, got %d", got)
	}
}

func TestModelIgnoresStaleTicks(t *testing.T) {
	m, _ := newTestModel(t, &fakeStore{}, wordsConfig(5), model.Settings{})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if m.life.Phase() != input.PhaseIdle {
		t.Fatalf("expected idle after restart, got %s", m.life.Phase())
	}
	_, cmd := m.Update(tickMsg{id: 1})
	if cmd != nil {
		t.Fatalf("expected cancelled tick not to re-arm")
	}
	if got := len(m.life.Snapshot().Samples); got != 0 {
		t.Fatalf("expected no samples, got %d", got)
	}
}

func TestModelFinishEndsZenRun(t *testing.T) {
	st := &fakeStore{}
	m, _ := newTestModel(t, st, model.Config{Mode: model.ModeZen, Lang: "en"}, model.Settings{})
	typeText(m, "go go")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	if m.life.Phase() != input.PhaseComplete || len(st.inserted) != 1 {
		t.Fatalf("expected zen run to be finished and saved")
	}
}

func TestModelQuickRestart(t *testing.T) {
	m, _ := newTestModel(t, &fakeStore{}, wordsConfig(5), model.Settings{QuickRestart: true})
	typeText(m, "go")
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	snap := m.life.Snapshot()
	if snap.Phase != input.PhaseIdle || snap.Index != 0 {
		t.Fatalf("expected fresh idle run, got %s at %d", snap.Phase, snap.Index)
	}
}

func TestModelQuit(t *testing.T) {
	m, _ := newTestModel(t, &fakeStore{}, wordsConfig(5), model.Settings{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
}

func TestModelRefreshesWeakFocus(t *testing.T) {
	st := &fakeStore{weak: []model.CharAggregate{{Char: "o", Correct: 1, Incorrect: 1}}}
	cfg := wordsConfig(1)
	m, err := NewModel(Options{
		Config:    cfg,
		Store:     st,
		Focus:     model.WeakFocus{Enabled: true, Top: 3, Factor: 2, Window: 10},
		Generator: generator.NewWithSource(generator.NewCorpus("", map[string][]string{"en": {"go"}}, nil), rand.New(rand.NewSource(1))),
	})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	if st.weakCalls != 1 {
		t.Fatalf("expected weak chars loaded at start, got %d calls", st.weakCalls)
	}
	typeText(m, "go")
	if st.weakCalls != 2 {
		t.Fatalf("expected weak chars refreshed after save, got %d calls", st.weakCalls)
	}
}

func TestEngineKeys(t *testing.T) {
	cases := []struct {
		msg  tea.KeyMsg
		want []input.Key
	}{
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ab")}, []input.Key{input.Rune('a'), input.Rune('b')}},
		{tea.KeyMsg{Type: tea.KeySpace}, []input.Key{{Kind: input.KeySpace}}},
		{tea.KeyMsg{Type: tea.KeyBackspace}, []input.Key{{Kind: input.KeyBackspace}}},
		{tea.KeyMsg{Type: tea.KeyTab}, []input.Key{{Kind: input.KeyTab}}},
		{tea.KeyMsg{Type: tea.KeyEnter}, []input.Key{{Kind: input.KeyEnter}}},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("pasted"), Paste: true}, nil},
		{tea.KeyMsg{Type: tea.KeyUp}, nil},
	}
	for _, tc := range cases {
		got := engineKeys(tc.msg)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: expected %d keys, got %d", tc.msg.String(), len(tc.want), len(got))
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: key %d = %v, want %v", tc.msg.String(), i, got[i], tc.want[i])
			}
		}
	}
}

func TestTeaSchedulerCancel(t *testing.T) {
	s := newTeaScheduler()
	fired := 0
	cancel := s.Every(time.Second, func() { fired++ })
	if s.drain() == nil {
		t.Fatalf("expected armed tick")
	}
	s.fire(1)
	if fired != 1 || s.drain() == nil {
		t.Fatalf("expected callback and re-armed tick")
	}
	cancel()
	s.fire(1)
	if fired != 1 || s.drain() != nil {
		t.Fatalf("expected cancelled registration to stay silent")
	}
}
