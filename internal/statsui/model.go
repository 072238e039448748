// Package statsui provides the Bubble Tea history interface.
package statsui

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/stats"
)

const (
	tabOverview = iota
	tabResults
	tabChars
)

const topChars = 8

// Store is the persistence the history screen reads from.
type Store interface {
	stats.ReportSource
	GetResult(ctx context.Context, id int64) (model.Result, error)
}

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Model implements the Bubble Tea history UI.
type Model struct {
	store Store
	cfg   model.StatsConfig
	now   func() time.Time

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	results   table.Model
	rowIDs    []int64
	chars     table.Model

	detail     viewport.Model
	showDetail bool

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a history UI model.
func NewModel(st Store, cfg model.StatsConfig) *Model {
	m := &Model{
		store:    st,
		cfg:      cfg,
		now:      time.Now,
		tabs:     []string{"Overview", "Results", "Chars"},
		overview: viewport.New(0, 0),
		detail:   viewport.New(0, 0),
		results:  newTable(resultColumns()),
		chars:    newTable(charColumns()),
	}
	m.initInputs()
	m.refreshReport()
	return m
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
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.showDetail {
			return m.updateDetail(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "/":
			return m.startFilter()
		case "enter":
			if m.activeTab == tabResults {
				m.openDetail()
			}
			return m, nil
		case "g", "home":
			m.gotoEdge(true)
			return m, nil
		case "G", "end":
			m.gotoEdge(false)
			return m, nil
		}
		var cmd tea.Cmd
		switch m.activeTab {
		case tabResults:
			m.results, cmd = m.results.Update(msg)
		case tabChars:
			m.chars, cmd = m.chars.Update(msg)
		default:
			m.overview, cmd = m.overview.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.showDetail {
		box := modalStyle.Width(modalWidth(m.width)).Render(m.detail.View())
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Lang: "),
		newFilterInput("Mode: "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
		newFilterInput("Curve window: "),
	}
	m.setInputsFromConfig()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func newTable(cols []table.Column) table.Model {
	t := table.New(table.WithColumns(cols), table.WithHeight(1))
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) setInputsFromConfig() {
	m.filterInputs[0].SetValue(strings.TrimSpace(m.cfg.Lang))
	m.filterInputs[1].SetValue(strings.TrimSpace(m.cfg.Mode))
	if m.cfg.Since != nil {
		m.filterInputs[2].SetValue(m.cfg.Since.Format("2006-01-02"))
	} else {
		m.filterInputs[2].SetValue("")
	}
	if m.cfg.Last > 0 {
		m.filterInputs[3].SetValue(strconv.Itoa(m.cfg.Last))
	} else {
		m.filterInputs[3].SetValue("")
	}
	m.filterInputs[4].SetValue(strconv.Itoa(m.cfg.CurveWindow))
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(1, lipgloss.Height(activeNavStyle.Render("X")))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	for _, t := range []*table.Model{&m.results, &m.chars} {
		t.SetWidth(m.width)
		// The header row and its border take two lines.
		t.SetHeight(max(1, bodyHeight-2))
	}
	m.detail.Width = modalInnerWidth(m.width)
	m.detail.Height = max(1, m.height-4)
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = max(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
	m.results.Blur()
	m.chars.Blur()
	switch m.activeTab {
	case tabResults:
		m.results.Focus()
	case tabChars:
		m.chars.Focus()
	}
}

func (m *Model) gotoEdge(top bool) {
	switch m.activeTab {
	case tabResults:
		if top {
			m.results.GotoTop()
		} else {
			m.results.GotoBottom()
		}
	case tabChars:
		if top {
			m.chars.GotoTop()
		} else {
			m.chars.GotoBottom()
		}
	default:
		if top {
			m.overview.GotoTop()
		} else {
			m.overview.GotoBottom()
		}
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	return m.renderTabs() + "\n" + m.renderFilterSummary()
}

func (m *Model) renderFilterSummary() string {
	lang := orDefault(m.cfg.Lang, "any")
	mode := orDefault(m.cfg.Mode, "any")
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Filters: lang=%s  mode=%s  since=%s  last=%s  window=%d", lang, mode, since, last, m.cfg.CurveWindow)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := "Nav: left/right  Scroll: up/down  Window: -/=  Filters: /  Quit: q"
	if m.activeTab == tabResults {
		help = "Nav: left/right  Scroll: up/down  Details: enter  Window: -/=  Filters: /  Quit: q"
	}
	if m.errMsg != "" {
		return headerStyle.Render(help) + "\n" + errorStyle.Render(m.errMsg)
	}
	return headerStyle.Render(help)
}

func (m *Model) renderBody() string {
	if m.filterMode {
		lines := []string{"Filters (enter to apply, esc to cancel)"}
		for _, input := range m.filterInputs {
			lines = append(lines, input.View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return strings.Join(lines, "\n")
	}
	switch m.activeTab {
	case tabResults:
		if len(m.report.Results) == 0 {
			return "No results found."
		}
		return tableMutedStyle.Render(m.results.View())
	case tabChars:
		if len(m.report.CharAggsAll) == 0 {
			return "No character stats found."
		}
		return tableMutedStyle.Render(m.chars.View())
	default:
		return m.overview.View()
	}
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.overview.SetContent("Failed to load stats.")
		return
	}
	m.errMsg = ""
	m.report = report
	rows, ids := resultRows(report.Results, m.now())
	m.results.SetRows(rows)
	m.rowIDs = ids
	m.chars.SetRows(charRows(report.CharAggsAll))
	m.renderOverview()
}

func (m *Model) renderOverview() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.report, m.cfg.CurveWindow, width))
}

func renderOverview(report stats.Report, window, width int) string {
	if len(report.Results) == 0 {
		return "No results found."
	}
	s := stats.Summarize(report.Results, window)
	cards := []string{
		metricCard("Tests", humanize.Comma(int64(s.Count))),
		metricCard("Avg WPM", fmt.Sprintf("%.1f", s.AvgWPM)),
		metricCard("Best WPM", strconv.Itoa(s.BestWPM)),
		metricCard("Avg Raw", fmt.Sprintf("%.1f", s.AvgRawWPM)),
		metricCard("Avg Acc", fmt.Sprintf("%.1f%%", s.AvgAccuracy)),
		metricCard("Consistency", fmt.Sprintf("%.0f%%", s.AvgConsistency)),
	}
	var grid string
	if width < 80 {
		grid = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
		grid = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}
	lines := []string{
		grid,
		"",
		fmt.Sprintf("Time typing: %s", time.Duration(s.TotalSeconds)*time.Second),
		fmt.Sprintf("WPM trend (window %d):", window),
		stats.Sparkline(stats.Downsample(s.RecentWPMSeries, max(10, width-2))),
	}
	if top := stats.TopCharsByFrequency(report.CharAggsWindow, topChars); len(top) > 0 {
		lines = append(lines, "", fmt.Sprintf("Most typed (last %d): %s", len(report.WindowResultIDs), strings.Join(top, " ")))
	}
	if weak := weakestChars(report.CharAggsWindow, topChars); len(weak) > 0 {
		lines = append(lines, fmt.Sprintf("Weakest (last %d): %s", len(report.WindowResultIDs), strings.Join(weak, " ")))
	}
	return strings.Join(lines, "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func resultColumns() []table.Column {
	return []table.Column{
		{Title: "When", Width: 16},
		{Title: "Mode", Width: 14},
		{Title: "Lang", Width: 6},
		{Title: "WPM", Width: 5},
		{Title: "Raw", Width: 5},
		{Title: "Accuracy", Width: 9},
		{Title: "Cons", Width: 5},
		{Title: "Time", Width: 6},
	}
}

// resultRows lists results newest first along with their ids in row order.
func resultRows(results []model.ResultSummary, now time.Time) ([]table.Row, []int64) {
	rows := make([]table.Row, 0, len(results))
	ids := make([]int64, 0, len(results))
	for i := len(results) - 1; i >= 0; i-- {
		r := results[i]
		rows = append(rows, table.Row{
			humanize.RelTime(r.EndedAt, now, "ago", "from now"),
			r.Mode.String(),
			r.Lang,
			strconv.Itoa(r.WPM),
			strconv.Itoa(r.RawWPM),
			fmt.Sprintf("%.2f%%", r.Accuracy),
			fmt.Sprintf("%d%%", r.Consistency),
			fmt.Sprintf("%ds", r.Elapsed),
		})
		ids = append(ids, r.ResultID)
	}
	return rows, ids
}

func charColumns() []table.Column {
	return []table.Column{
		{Title: "Char", Width: 7},
		{Title: "Accuracy", Width: 9},
		{Title: "Correct", Width: 7},
		{Title: "Incorrect", Width: 9},
		{Title: "Missed", Width: 6},
		{Title: "Total", Width: 6},
	}
}

func charRows(aggs []model.CharAggregate) []table.Row {
	sorted := sortWeakestFirst(aggs)
	rows := make([]table.Row, 0, len(sorted))
	for _, agg := range sorted {
		rows = append(rows, table.Row{
			charLabel(agg.Char),
			fmt.Sprintf("%.2f%%", stats.CharAccuracy(agg)*100),
			humanize.Comma(int64(agg.Correct)),
			humanize.Comma(int64(agg.Incorrect)),
			humanize.Comma(int64(agg.Missed)),
			humanize.Comma(int64(agg.Correct + agg.Incorrect + agg.Missed)),
		})
	}
	return rows
}

func weakestChars(aggs []model.CharAggregate, n int) []string {
	out := make([]string, 0, n)
	for _, agg := range sortWeakestFirst(aggs) {
		if len(out) == n || stats.CharAccuracy(agg) >= 1 {
			break
		}
		out = append(out, charLabel(agg.Char))
	}
	return out
}

func sortWeakestFirst(aggs []model.CharAggregate) []model.CharAggregate {
	out := append([]model.CharAggregate(nil), aggs...)
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := stats.CharAccuracy(out[i]), stats.CharAccuracy(out[j])
		if ai == aj {
			return out[i].Char < out[j].Char
		}
		return ai < aj
	})
	return out
}

func charLabel(c string) string {
	if c == " " {
		return "<space>"
	}
	return c
}

func (m *Model) openDetail() {
	idx := m.results.Cursor()
	if idx < 0 || idx >= len(m.rowIDs) {
		return
	}
	r, err := m.store.GetResult(context.Background(), m.rowIDs[idx])
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load result: %v", err)
		return
	}
	var b strings.Builder
	b.WriteString(cardValueStyle.Render(r.EndedAt.Local().Format("2006-01-02 15:04")))
	b.WriteString("\n\n")
	if err := stats.RenderResult(&b, r, max(10, modalInnerWidth(m.width))); err != nil {
		m.errMsg = err.Error()
		return
	}
	if len(r.History) > 0 {
		b.WriteString("\n")
		if err := stats.RenderCharTable(&b, stats.CharAggregates(r.History)); err != nil {
			m.errMsg = err.Error()
			return
		}
	}
	b.WriteString(headerStyle.Render("esc/enter: close"))
	m.detail.SetContent(b.String())
	m.detail.GotoTop()
	m.showDetail = true
}

func (m *Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "q":
		m.showDetail = false
		return m, nil
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	m.filterIndex = (idx + count) % count
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	cfg := model.StatsConfig{
		Lang:        strings.TrimSpace(m.filterInputs[0].Value()),
		CurveWindow: m.cfg.CurveWindow,
	}

	if modeInput := strings.TrimSpace(m.filterInputs[1].Value()); modeInput != "" {
		mode, err := model.ParseMode(modeInput)
		if err != nil {
			return fmt.Errorf("invalid mode (time, words, quote, zen or custom)")
		}
		cfg.Mode = mode.String()
	}

	if sinceInput := strings.TrimSpace(m.filterInputs[2].Value()); sinceInput != "" {
		parsed, err := time.ParseInLocation("2006-01-02", sinceInput, time.Local)
		if err != nil {
			return fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		cfg.Since = &parsed
	}

	if lastInput := strings.TrimSpace(m.filterInputs[3].Value()); lastInput != "" {
		parsed, err := strconv.Atoi(lastInput)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		cfg.Last = parsed
	}

	if windowInput := strings.TrimSpace(m.filterInputs[4].Value()); windowInput != "" {
		parsed, err := strconv.Atoi(windowInput)
		if err != nil || parsed < 1 {
			return fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		cfg.CurveWindow = parsed
	}

	m.cfg = cfg
	return nil
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func modalWidth(width int) int {
	return max(40, min(width-4, 80))
}

func modalInnerWidth(width int) int {
	// 2 border + 4 padding
	return max(10, modalWidth(width)-6)
}

func orDefault(s, fallback string) string {
	if s = strings.TrimSpace(s); s == "" {
		return fallback
	}
	return s
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
