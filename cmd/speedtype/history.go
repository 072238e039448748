package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/speedtype/internal/config"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/stats"
	"github.com/verte-zerg/speedtype/internal/statsui"
)

const (
	recentResults = 10
	fallbackWidth = 80
)

// filterFlags selects stored results for history and export.
type filterFlags struct {
	lang        string
	mode        string
	since       string
	last        int
	curveWindow int
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.lang, "lang", "", "language filter")
	cmd.Flags().StringVar(&f.mode, "mode", "", "mode filter")
	cmd.Flags().StringVar(&f.since, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&f.last, "last", 0, "limit to last N results")
}

func (f filterFlags) statsConfig() (model.StatsConfig, error) {
	cfg := model.StatsConfig{
		Lang:        strings.ToLower(strings.TrimSpace(f.lang)),
		Last:        f.last,
		CurveWindow: f.curveWindow,
	}
	if f.last < 0 {
		return cfg, fmt.Errorf("--last must be >= 0")
	}
	if f.mode != "" {
		mode, err := model.ParseMode(f.mode)
		if err != nil {
			return cfg, fmt.Errorf("--mode: %w", err)
		}
		cfg.Mode = mode.String()
	}
	if f.since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", f.since, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	return cfg, nil
}

func newHistoryCmd() *cobra.Command {
	var (
		filters filterFlags
		plain   bool
	)
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"stats"},
		Short:   "Browse past results",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := filters.statsConfig()
			if err != nil {
				return err
			}
			if cfg.CurveWindow < 1 {
				return fmt.Errorf("--curve-window must be >= 1")
			}
			st, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			if plain {
				report, err := stats.BuildReport(context.Background(), st, cfg)
				if err != nil {
					return fmt.Errorf("failed to load history: %w", err)
				}
				return writePlainHistory(cmd.OutOrStdout(), report, cfg.CurveWindow, terminalWidth(), time.Now())
			}
			program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("failed to run history TUI: %w", err)
			}
			return nil
		},
	}
	filters.register(cmd)
	cmd.Flags().IntVar(&filters.curveWindow, "curve-window", config.DefaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&plain, "plain", false, "print a text report instead of the interactive view")
	return cmd
}

func writePlainHistory(w io.Writer, report stats.Report, window, width int, now time.Time) error {
	if err := stats.RenderSummary(w, report.Results, window, width); err != nil {
		return err
	}
	if len(report.Results) == 0 {
		return nil
	}
	if err := stats.RenderCharTable(w, report.CharAggsWindow); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Recent"); err != nil {
		return err
	}
	start := max(0, len(report.Results)-recentResults)
	for i := len(report.Results) - 1; i >= start; i-- {
		r := report.Results[i]
		line := fmt.Sprintf("%-16s %-6s %-4s %3d WPM  %6.2f%%  %ds",
			humanize.RelTime(r.EndedAt, now, "ago", "from now"), r.Mode, r.Lang, r.WPM, r.Accuracy, r.Elapsed)
		if _, err := fmt.Fprintln(w, truncate(line, width)); err != nil {
			return err
		}
	}
	return nil
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return fallbackWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return fallbackWidth
	}
	return width
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	return string(runes[:width])
}
