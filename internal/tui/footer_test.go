package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/speedtype/internal/engine"
	"github.com/verte-zerg/speedtype/internal/input"
	"github.com/verte-zerg/speedtype/internal/model"
)

func TestRenderFooterFormats(t *testing.T) {
	m := &Model{
		history: []model.ResultSummary{
			{WPM: 64, Accuracy: 96},
			{WPM: 72, Accuracy: 97.8},
		},
	}
	snap := engine.Snapshot{
		Config: model.Config{Mode: model.ModeWords},
		Words:  []string{"a", "b", "c", "d"},
		Index:  2,
	}
	out := m.renderFooter(snap)
	if !containsAll(out, []string{"2/4", "Last 72 WPM · 97.8%", "All-time 68.0 WPM · 96.9%"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestRenderFooterWithoutHistory(t *testing.T) {
	m := &Model{}
	out := m.renderFooter(engine.Snapshot{Config: model.Config{Mode: model.ModeTime}, Remaining: 12})
	if strings.Contains(out, "Last") {
		t.Fatalf("expected no history segments: %s", out)
	}
	if !strings.Contains(out, "12s") {
		t.Fatalf("expected countdown: %s", out)
	}
}

func TestRenderFooterLiveWPM(t *testing.T) {
	m := &Model{}
	snap := engine.Snapshot{
		Phase:   input.PhaseActive,
		Config:  model.Config{Mode: model.ModeZen},
		Index:   3,
		Elapsed: 6 * time.Second,
	}
	out := m.renderFooter(snap)
	if !containsAll(out, []string{"3 words", "0 WPM"}) {
		t.Fatalf("footer missing live segments: %s", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
