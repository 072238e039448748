package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/verte-zerg/speedtype/internal/model"
)

// Summary aggregates stored results.
type Summary struct {
	Count           int
	AvgWPM          float64
	BestWPM         int
	AvgRawWPM       float64
	AvgAccuracy     float64
	AvgConsistency  float64
	TotalSeconds    int
	RecentWPMSeries []float64
}

// Summarize aggregates stored results in chronological order.
func Summarize(results []model.ResultSummary, window int) Summary {
	s := Summary{Count: len(results)}
	if len(results) == 0 {
		return s
	}
	wpms := make([]float64, len(results))
	var totalWPM, totalRaw, totalAcc, totalCons float64
	for i, r := range results {
		totalWPM += float64(r.WPM)
		totalRaw += float64(r.RawWPM)
		totalAcc += r.Accuracy
		totalCons += float64(r.Consistency)
		s.TotalSeconds += r.Elapsed
		s.BestWPM = max(s.BestWPM, r.WPM)
		wpms[i] = float64(r.WPM)
	}
	n := float64(len(results))
	s.AvgWPM = totalWPM / n
	s.AvgRawWPM = totalRaw / n
	s.AvgAccuracy = totalAcc / n
	s.AvgConsistency = totalCons / n
	s.RecentWPMSeries = MovingAverage(wpms, window)
	return s
}

// RenderSummary prints a summary of stored results. The trend line is squeezed
// into width columns when width is positive.
func RenderSummary(w io.Writer, results []model.ResultSummary, window, width int) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	s := Summarize(results, window)
	trend := s.RecentWPMSeries
	if width > len("WPM trend: ") {
		trend = Downsample(trend, width-len("WPM trend: "))
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Tests: %d", s.Count),
		fmt.Sprintf("Avg WPM: %.2f", s.AvgWPM),
		fmt.Sprintf("Best WPM: %d", s.BestWPM),
		fmt.Sprintf("Avg Raw WPM: %.2f", s.AvgRawWPM),
		fmt.Sprintf("Avg Accuracy: %.2f%%", s.AvgAccuracy),
		fmt.Sprintf("Avg Consistency: %.2f%%", s.AvgConsistency),
		fmt.Sprintf("Time typing: %ds", s.TotalSeconds),
		fmt.Sprintf("WPM trend: %s", Sparkline(trend)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderResult prints the final report of one run.
func RenderResult(w io.Writer, r model.Result, width int) error {
	wpm, _ := SampleSeries(r.Samples)
	lines := []string{
		fmt.Sprintf("%s %s", r.Config.Mode, modeDetail(r.Config)),
		fmt.Sprintf("WPM: %d  Raw: %d", r.Stats.WPM, r.Stats.RawWPM),
		fmt.Sprintf("Accuracy: %.2f%%  Consistency: %d%%", r.Stats.Accuracy, r.Stats.Consistency),
		fmt.Sprintf("Characters: %d/%d/%d/%d (correct/incorrect/extra/missed)",
			r.Stats.Correct, r.Stats.Incorrect, r.Stats.Extra, r.Stats.Missed),
		fmt.Sprintf("Time: %ds", r.Stats.Elapsed),
	}
	if len(wpm) > 0 {
		lines = append(lines, "WPM: "+Sparkline(Downsample(wpm, width)))
	}
	if r.QuoteSource != "" {
		lines = append(lines, "Quote: "+r.QuoteSource)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCharTable prints per-character aggregates, weakest first.
func RenderCharTable(w io.Writer, aggs []model.CharAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No character stats found.")
		return err
	}
	rows := make([]model.CharAggregate, len(aggs))
	copy(rows, aggs)
	sort.Slice(rows, func(i, j int) bool {
		ai, aj := CharAccuracy(rows[i]), CharAccuracy(rows[j])
		if ai == aj {
			return rows[i].Char < rows[j].Char
		}
		return ai < aj
	})

	if _, err := fmt.Fprintln(w, "Per-Character"); err != nil {
		return err
	}
	headers := []string{"Char", "Accuracy", "Correct", "Incorrect", "Missed"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.Char,
			fmt.Sprintf("%.2f%%", CharAccuracy(r)*100),
			fmt.Sprintf("%d", r.Correct),
			fmt.Sprintf("%d", r.Incorrect),
			fmt.Sprintf("%d", r.Missed),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func modeDetail(cfg model.Config) string {
	switch cfg.Mode {
	case model.ModeTime:
		return fmt.Sprintf("%ds", cfg.TimeLimit)
	case model.ModeWords:
		return fmt.Sprintf("%d words", cfg.WordLimit)
	case model.ModeQuote:
		return cfg.QuoteLength.String()
	default:
		return ""
	}
}
