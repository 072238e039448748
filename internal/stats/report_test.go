package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "speedtype.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		end := start.Add(30 * time.Second)
		result := model.Result{
			ID:        string(rune('a' + i)),
			CreatedAt: end,
			StartedAt: start,
			EndedAt:   end,
			Config:    model.Config{Mode: model.ModeWords, WordLimit: 10, Lang: "en"},
			Stats:     model.Stats{WPM: 40 + i, RawWPM: 45, Accuracy: 95, Consistency: 80, Elapsed: 30},
		}
		charStats := []model.CharAggregate{
			{Char: "a", Correct: 5},
			{Char: "b", Correct: 4, Incorrect: 1},
		}
		if i == 0 {
			charStats = append(charStats, model.CharAggregate{Char: "z", Missed: 2})
		}
		id, err := st.InsertResult(ctx, result, charStats)
		if err != nil {
			t.Fatalf("insert result: %v", err)
		}
		ids = append(ids, id)
	}

	cfg := model.StatsConfig{
		Lang:        "en",
		Last:        2,
		CurveWindow: 1,
	}
	report, err := BuildReport(ctx, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(report.Results))
	}
	if report.Results[0].ResultID != ids[1] || report.Results[1].ResultID != ids[2] {
		t.Fatalf("unexpected result ids: %+v", report.Results)
	}
	if len(report.WindowResultIDs) != 1 || report.WindowResultIDs[0] != ids[2] {
		t.Fatalf("unexpected window ids: %v", report.WindowResultIDs)
	}
	if len(report.CharAggsAll) != 2 {
		t.Fatalf("expected char aggregates without the trimmed result, got %+v", report.CharAggsAll)
	}
	if report.CharAggsAll[0].Correct != 10 {
		t.Fatalf("expected summed correct counts, got %+v", report.CharAggsAll[0])
	}
	if len(report.CharAggsWindow) != 2 || report.CharAggsWindow[0].Correct != 5 {
		t.Fatalf("unexpected window aggregates: %+v", report.CharAggsWindow)
	}
}
