package stats

import (
	"context"

	"github.com/verte-zerg/speedtype/internal/model"
)

// ReportSource is the storage a Report is built from.
type ReportSource interface {
	ListResults(ctx context.Context, cfg model.StatsConfig) ([]model.ResultSummary, error)
	ListCharAggregatesForResults(ctx context.Context, ids []int64) ([]model.CharAggregate, error)
}

// Report contains precomputed data for history rendering.
type Report struct {
	Results         []model.ResultSummary
	WindowResultIDs []int64
	CharAggsAll     []model.CharAggregate
	CharAggsWindow  []model.CharAggregate
}

// BuildReport loads and prepares stored results for rendering.
func BuildReport(ctx context.Context, st ReportSource, cfg model.StatsConfig) (Report, error) {
	results, err := st.ListResults(ctx, cfg)
	if err != nil {
		return Report{}, err
	}

	allIDs := resultIDs(results)
	windowIDs := lastResultIDs(results, cfg.CurveWindow)
	charAggsAll, err := st.ListCharAggregatesForResults(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}
	charAggsWindow, err := st.ListCharAggregatesForResults(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Results:         results,
		WindowResultIDs: windowIDs,
		CharAggsAll:     charAggsAll,
		CharAggsWindow:  charAggsWindow,
	}, nil
}

func resultIDs(results []model.ResultSummary) []int64 {
	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.ResultID
	}
	return ids
}

func lastResultIDs(results []model.ResultSummary, window int) []int64 {
	if window <= 0 || len(results) <= window {
		return resultIDs(results)
	}
	return resultIDs(results[len(results)-window:])
}
