package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/store"
)

// exportRecord is the stable on-disk shape of one exported result.
type exportRecord struct {
	ID          string         `json:"id" yaml:"id"`
	StartedAt   time.Time      `json:"started_at" yaml:"started_at"`
	EndedAt     time.Time      `json:"ended_at" yaml:"ended_at"`
	Mode        string         `json:"mode" yaml:"mode"`
	TimeLimit   int            `json:"time_limit,omitempty" yaml:"time_limit,omitempty"`
	WordLimit   int            `json:"word_limit,omitempty" yaml:"word_limit,omitempty"`
	Lang        string         `json:"lang" yaml:"lang"`
	Punctuation bool           `json:"punctuation" yaml:"punctuation"`
	Numbers     bool           `json:"numbers" yaml:"numbers"`
	Difficulty  string         `json:"difficulty" yaml:"difficulty"`
	QuoteSource string         `json:"quote_source,omitempty" yaml:"quote_source,omitempty"`
	WPM         int            `json:"wpm" yaml:"wpm"`
	RawWPM      int            `json:"raw_wpm" yaml:"raw_wpm"`
	Accuracy    float64        `json:"accuracy" yaml:"accuracy"`
	Consistency int            `json:"consistency" yaml:"consistency"`
	Chars       exportChars    `json:"chars" yaml:"chars"`
	Elapsed     int            `json:"elapsed" yaml:"elapsed"`
	Samples     []exportSample `json:"samples,omitempty" yaml:"samples,omitempty"`
	Words       []exportWord   `json:"words,omitempty" yaml:"words,omitempty"`
}

type exportChars struct {
	Correct   int `json:"correct" yaml:"correct"`
	Incorrect int `json:"incorrect" yaml:"incorrect"`
	Extra     int `json:"extra" yaml:"extra"`
	Missed    int `json:"missed" yaml:"missed"`
}

type exportSample struct {
	Elapsed float64 `json:"elapsed" yaml:"elapsed"`
	WPM     int     `json:"wpm" yaml:"wpm"`
	RawWPM  int     `json:"raw_wpm" yaml:"raw_wpm"`
}

type exportWord struct {
	Word   string `json:"word" yaml:"word"`
	Typed  string `json:"typed" yaml:"typed"`
	States string `json:"states" yaml:"states"`
}

func newExportCmd() *cobra.Command {
	var (
		filters filterFlags
		format  string
		output  string
		noWords bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored results as YAML or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "yaml" && format != "json" {
				return fmt.Errorf("--format must be yaml or json")
			}
			cfg, err := filters.statsConfig()
			if err != nil {
				return err
			}
			st, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			records, err := loadExport(context.Background(), st, cfg, !noWords)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer func() {
					if cerr := f.Close(); cerr != nil {
						logErrf("failed to close %s: %v\n", output, cerr)
					}
				}()
				w = f
			}
			return writeExport(w, format, records)
		},
	}
	filters.register(cmd)
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&noWords, "no-words", false, "omit per-word history")
	return cmd
}

// resultLoader is the storage export reads from.
type resultLoader interface {
	ListResults(ctx context.Context, cfg model.StatsConfig) ([]model.ResultSummary, error)
	GetResult(ctx context.Context, id int64) (model.Result, error)
}

func loadExport(ctx context.Context, st resultLoader, cfg model.StatsConfig, withWords bool) ([]exportRecord, error) {
	summaries, err := st.ListResults(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	records := make([]exportRecord, 0, len(summaries))
	for _, sum := range summaries {
		r, err := st.GetResult(ctx, sum.ResultID)
		if err != nil {
			return nil, fmt.Errorf("failed to load result %d: %w", sum.ResultID, err)
		}
		records = append(records, newExportRecord(r, withWords))
	}
	return records, nil
}

func newExportRecord(r model.Result, withWords bool) exportRecord {
	rec := exportRecord{
		ID:          r.ID,
		StartedAt:   r.StartedAt.UTC(),
		EndedAt:     r.EndedAt.UTC(),
		Mode:        r.Config.Mode.String(),
		Lang:        r.Config.Lang,
		Punctuation: r.Config.Punctuation,
		Numbers:     r.Config.Numbers,
		Difficulty:  r.Config.Difficulty.String(),
		QuoteSource: r.QuoteSource,
		WPM:         r.Stats.WPM,
		RawWPM:      r.Stats.RawWPM,
		Accuracy:    r.Stats.Accuracy,
		Consistency: r.Stats.Consistency,
		Chars: exportChars{
			Correct:   r.Stats.Correct,
			Incorrect: r.Stats.Incorrect,
			Extra:     r.Stats.Extra,
			Missed:    r.Stats.Missed,
		},
		Elapsed: r.Stats.Elapsed,
	}
	switch r.Config.Mode {
	case model.ModeTime:
		rec.TimeLimit = r.Config.TimeLimit
	case model.ModeWords:
		rec.WordLimit = r.Config.WordLimit
	}
	for _, s := range r.Samples {
		rec.Samples = append(rec.Samples, exportSample{Elapsed: s.Elapsed, WPM: s.WPM, RawWPM: s.RawWPM})
	}
	if withWords {
		for _, w := range r.History {
			rec.Words = append(rec.Words, exportWord{Word: w.Word, Typed: w.Typed, States: store.EncodeStates(w.States)})
		}
	}
	return rec
}

func writeExport(w io.Writer, format string, records []exportRecord) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return nil
	}
}
