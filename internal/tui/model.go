// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/speedtype/internal/engine"
	"github.com/verte-zerg/speedtype/internal/generator"
	"github.com/verte-zerg/speedtype/internal/input"
	"github.com/verte-zerg/speedtype/internal/logging"
	"github.com/verte-zerg/speedtype/internal/model"
	statsPkg "github.com/verte-zerg/speedtype/internal/stats"
)

// Store is the persistence the typing screen needs.
type Store interface {
	InsertResult(ctx context.Context, r model.Result, chars []model.CharAggregate) (int64, error)
	ListResults(ctx context.Context, cfg model.StatsConfig) ([]model.ResultSummary, error)
	GetWeakChars(ctx context.Context, window int, lang string) ([]model.CharAggregate, error)
}

// Options configures a typing session.
type Options struct {
	Config     model.Config
	Settings   model.Settings
	Focus      model.WeakFocus
	CustomText string
	Store      Store
	Generator  *generator.Generator
	Logger     *slog.Logger
	// Clock overrides the wall clock; used by tests.
	Clock engine.Clock
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	life  *engine.Lifecycle
	sched *teaScheduler
	store Store
	gen   *generator.Generator
	focus model.WeakFocus
	log   *slog.Logger

	keys keyMap
	help help.Model

	width  int
	height int

	weakNoticePrinted bool
	history           []model.ResultSummary
	err               error
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	extraStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8071A"))
	missedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Faint(true)
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = pendingStyle.Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// NewModel constructs a typing TUI model.
func NewModel(opts Options) (*Model, error) {
	if opts.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	m := &Model{
		sched: newTeaScheduler(),
		store: opts.Store,
		gen:   opts.Generator,
		focus: opts.Focus,
		log:   log,
		keys:  defaultKeyMap(opts.Settings.QuickRestart),
		help:  help.New(),
	}
	m.loadFooterStats(opts.Config.Lang)
	if m.focus.Enabled {
		m.refreshWeakSet(opts.Config.Lang)
	}

	engineOpts := []engine.Option{
		engine.WithScheduler(m.sched),
		engine.WithLogger(log),
		engine.WithResultHandler(m.saveResult),
	}
	if opts.Clock != nil {
		engineOpts = append(engineOpts, engine.WithClock(opts.Clock))
	}
	life, err := engine.New(opts.Config, opts.Settings, opts.Generator, engineOpts...)
	if err != nil {
		return nil, err
	}
	if opts.CustomText != "" {
		if err := life.SetCustomText(opts.CustomText); err != nil {
			return nil, fmt.Errorf("failed to set custom text: %w", err)
		}
	}
	m.life = life
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		m.sched.fire(msg.id)
		return m, m.sched.drain()
	case tea.KeyMsg:
		m.err = nil
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Restart):
			m.setErr(m.life.Restart(input.CauseCommand))
		case key.Matches(msg, m.keys.Finish):
			m.life.Finish()
		default:
			for _, k := range engineKeys(msg) {
				out, err := m.life.Key(k)
				m.setErr(err)
				if out.Effect == input.EffectRestart {
					m.log.Debug("restart", "cause", out.Cause.String())
				}
			}
		}
		return m, m.sched.drain()
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	snap := m.life.Snapshot()
	var content string
	if snap.Phase == input.PhaseComplete {
		content = m.renderResult()
	} else {
		content = m.renderText(snap)
	}
	if m.err != nil {
		content += "\n\n" + errorStyle.Render(m.err.Error())
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter(snap) + "  " + m.help.View(m.keys)
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderText(snap engine.Snapshot) string {
	if len(snap.Words) == 0 {
		return pendingStyle.Render("No text to type.")
	}
	runes := buildStyledRunes(textView{
		words:   snap.Words,
		history: snap.History,
		index:   snap.Index,
		buffer:  snap.Buffer,
		cursor:  true,
	})
	contentWidth := m.contentWidth()
	if contentWidth == 0 {
		return renderStyledRunes(runes)
	}
	wrapped := wrapStyledRunes(runes, contentWidth)
	return lipgloss.NewStyle().Width(contentWidth).Render(wrapped)
}

func (m *Model) renderResult() string {
	r, ok := m.life.Result()
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Result"))
	b.WriteString("\n")
	chartWidth := m.contentWidth()
	if chartWidth == 0 {
		chartWidth = 60
	}
	if err := statsPkg.RenderResult(&b, r, chartWidth); err != nil {
		return err.Error()
	}
	return b.String()
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	return max(1, int(float64(m.width)*0.70))
}

func (m *Model) renderFooter(snap engine.Snapshot) string {
	segments := []string{progressSegment(snap)}
	if snap.Phase == input.PhaseActive {
		segments = append(segments, fmt.Sprintf("%d WPM", statsPkg.WPM(snap.History, snap.Elapsed)))
	}
	if n := len(m.history); n > 0 {
		last := m.history[n-1]
		segments = append(segments, fmt.Sprintf("Last %d WPM · %.1f%%", last.WPM, last.Accuracy))
		all := statsPkg.Summarize(m.history, 0)
		segments = append(segments, fmt.Sprintf("All-time %.1f WPM · %.1f%%", all.AvgWPM, all.AvgAccuracy))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func progressSegment(snap engine.Snapshot) string {
	switch snap.Config.Mode {
	case model.ModeTime:
		return fmt.Sprintf("%ds", snap.Remaining)
	case model.ModeZen:
		return fmt.Sprintf("%d words", snap.Index)
	default:
		return fmt.Sprintf("%d/%d", snap.Index, len(snap.Words))
	}
}

func (m *Model) setErr(err error) {
	if err == nil {
		return
	}
	m.log.Error("engine error", "err", err)
	m.err = err
}

func (m *Model) loadFooterStats(lang string) {
	if m.store == nil {
		return
	}
	results, err := m.store.ListResults(context.Background(), model.StatsConfig{Lang: lang})
	if err != nil {
		logErrf("failed to load result stats: %v\n", err)
		return
	}
	m.history = results
}

func (m *Model) saveResult(r model.Result) {
	if m.store == nil {
		return
	}
	ctx := context.Background()
	id, err := m.store.InsertResult(ctx, r, statsPkg.CharAggregates(r.History))
	if err != nil {
		m.setErr(fmt.Errorf("failed to save result: %w", err))
		return
	}
	m.history = append(m.history, model.ResultSummary{
		ResultID:    id,
		UUID:        r.ID,
		EndedAt:     r.EndedAt,
		Mode:        r.Config.Mode,
		Lang:        r.Config.Lang,
		WPM:         r.Stats.WPM,
		RawWPM:      r.Stats.RawWPM,
		Accuracy:    r.Stats.Accuracy,
		Consistency: r.Stats.Consistency,
		Elapsed:     r.Stats.Elapsed,
	})
	if m.focus.Enabled {
		m.refreshWeakSet(r.Config.Lang)
	}
}

func (m *Model) refreshWeakSet(lang string) {
	if m.store == nil {
		return
	}
	aggs, err := m.store.GetWeakChars(context.Background(), m.focus.Window, lang)
	if err != nil {
		logErrf("failed to load weak chars: %v\n", err)
		return
	}
	weakSet := statsPkg.SelectWeakChars(aggs, m.focus.Top)
	if len(weakSet) == 0 && !m.weakNoticePrinted {
		logErrln("no stats available for weak-char focus yet; using normal generator")
		m.weakNoticePrinted = true
	}
	m.gen.SetWeakFocus(weakSet, m.focus.Factor)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
