// Package main provides the CLI entrypoint for speedtype.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/speedtype/internal/config"
	"github.com/verte-zerg/speedtype/internal/generator"
	"github.com/verte-zerg/speedtype/internal/logging"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/store"
	"github.com/verte-zerg/speedtype/internal/tui"
)

// testFlags holds the root command flags before they are parsed into the engine types.
type testFlags struct {
	mode         string
	time         int
	words        int
	lang         string
	punct        bool
	numbers      bool
	difficulty   string
	quoteLength  string
	quickRestart bool
	quickEnd     bool
	stopOnError  string
	confidence   string
	focusWeak    bool
	weakTop      int
	weakFactor   float64
	weakWindow   int
	text         string
	logLevel     string
}

var practice testFlags

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "speedtype",
		Short:         "Terminal typing speed test",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTestCmd,
	}

	f := rootCmd.Flags()
	f.StringVar(&practice.mode, "mode", config.DefaultMode, "test mode: time, words, quote, zen or custom")
	f.IntVar(&practice.time, "time", config.DefaultTime, "seconds per time-mode test")
	f.IntVar(&practice.words, "words", config.DefaultWords, "words per words-mode test")
	f.StringVar(&practice.lang, "lang", config.DefaultLang, "language code")
	f.BoolVar(&practice.punct, "punct", false, "append random punctuation to words")
	f.BoolVar(&practice.numbers, "numbers", false, "replace some words with numbers")
	f.StringVar(&practice.difficulty, "difficulty", config.DefaultDifficulty, "normal, expert or master")
	f.StringVar(&practice.quoteLength, "quote-length", config.DefaultQuoteLength, "short, medium, long or thicc")
	f.BoolVar(&practice.quickRestart, "quick-restart", true, "restart with Tab then Enter")
	f.BoolVar(&practice.quickEnd, "quick-end", false, "end once the last word is started")
	f.StringVar(&practice.stopOnError, "stop-on-error", config.DefaultStopOnError, "off, letter or word")
	f.StringVar(&practice.confidence, "confidence", config.DefaultConfidence, "off, partial or full")
	f.BoolVar(&practice.focusWeak, "focus-weak", false, "bias words toward weak characters")
	f.IntVar(&practice.weakTop, "weak-top", config.DefaultWeakTop, "number of weak characters to focus on")
	f.Float64Var(&practice.weakFactor, "weak-factor", config.DefaultWeakFactor, "weight factor for weak characters")
	f.IntVar(&practice.weakWindow, "weak-window", config.DefaultWeakWindow, "number of recent results to compute weak chars")
	f.StringVar(&practice.text, "text", "", "text to type in custom mode")
	rootCmd.PersistentFlags().StringVar(&practice.logLevel, "log-level", "", "write diagnostics at this level (debug, info, warn, error)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLangsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newExportCmd())

	return rootCmd
}

// testOptions is the validated form of the root command flags.
type testOptions struct {
	cfg      model.Config
	settings model.Settings
	focus    model.WeakFocus
	text     string
}

func runTestCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	mergeFileConfig(cmd, &practice, fileCfg)

	opts, err := parseTestFlags(practice)
	if err != nil {
		return err
	}

	log, closer, err := logging.OpenFile(config.DefaultLogPath(), practice.logLevel)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer func() {
		if cerr := closer.Close(); cerr != nil {
			// Best-effort close of the log file.
			_ = cerr
		}
	}()

	corpus, err := generator.DefaultCorpus(config.DefaultWordListDir())
	if err != nil {
		return err
	}
	if opts.cfg.Mode != model.ModeQuote && opts.cfg.Mode != model.ModeCustom {
		if _, err := corpus.Words(opts.cfg.Lang); err != nil {
			return languageError(opts.cfg.Lang, corpus.Languages(), err)
		}
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	m, err := tui.NewModel(tui.Options{
		Config:     opts.cfg,
		Settings:   opts.settings,
		Focus:      opts.focus,
		CustomText: opts.text,
		Store:      st,
		Generator:  generator.New(corpus),
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("failed to start test: %w", err)
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// mergeFileConfig copies config file values into flags the user did not set.
func mergeFileConfig(cmd *cobra.Command, f *testFlags, fileCfg config.FileConfig) {
	t, b := fileCfg.Test, fileCfg.Behavior
	applyStringConfig(cmd, "mode", &f.mode, stringPtr(t.Mode))
	applyIntConfig(cmd, "time", &f.time, t.Time)
	applyIntConfig(cmd, "words", &f.words, t.Words)
	applyStringConfig(cmd, "lang", &f.lang, t.Lang)
	applyBoolConfig(cmd, "punct", &f.punct, t.Punctuation)
	applyBoolConfig(cmd, "numbers", &f.numbers, t.Numbers)
	applyStringConfig(cmd, "difficulty", &f.difficulty, stringPtr(t.Difficulty))
	applyStringConfig(cmd, "quote-length", &f.quoteLength, stringPtr(t.QuoteLength))
	applyBoolConfig(cmd, "focus-weak", &f.focusWeak, t.FocusWeak)
	applyIntConfig(cmd, "weak-top", &f.weakTop, t.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &f.weakFactor, t.WeakFactor)
	applyIntConfig(cmd, "weak-window", &f.weakWindow, t.WeakWindow)
	applyBoolConfig(cmd, "quick-restart", &f.quickRestart, b.QuickRestart)
	applyBoolConfig(cmd, "quick-end", &f.quickEnd, b.QuickEnd)
	applyStringConfig(cmd, "stop-on-error", &f.stopOnError, stringPtr(b.StopOnError))
	applyStringConfig(cmd, "confidence", &f.confidence, stringPtr(b.Confidence))
}

func parseTestFlags(f testFlags) (testOptions, error) {
	mode, err := model.ParseMode(f.mode)
	if err != nil {
		return testOptions{}, fmt.Errorf("--mode: %w", err)
	}
	difficulty, err := model.ParseDifficulty(f.difficulty)
	if err != nil {
		return testOptions{}, fmt.Errorf("--difficulty: %w", err)
	}
	quoteLength, err := model.ParseQuoteLength(f.quoteLength)
	if err != nil {
		return testOptions{}, fmt.Errorf("--quote-length: %w", err)
	}
	stopOnError, err := model.ParseStopOnError(f.stopOnError)
	if err != nil {
		return testOptions{}, fmt.Errorf("--stop-on-error: %w", err)
	}
	confidence, err := model.ParseConfidence(f.confidence)
	if err != nil {
		return testOptions{}, fmt.Errorf("--confidence: %w", err)
	}
	opts := testOptions{
		cfg: model.Config{
			Mode:        mode,
			TimeLimit:   f.time,
			WordLimit:   f.words,
			Lang:        strings.ToLower(strings.TrimSpace(f.lang)),
			Punctuation: f.punct,
			Numbers:     f.numbers,
			Difficulty:  difficulty,
			QuoteLength: quoteLength,
		},
		settings: model.Settings{
			QuickRestart: f.quickRestart,
			QuickEnd:     f.quickEnd,
			StopOnError:  stopOnError,
			Confidence:   confidence,
		},
		focus: model.WeakFocus{
			Enabled: f.focusWeak,
			Top:     f.weakTop,
			Factor:  f.weakFactor,
			Window:  f.weakWindow,
		},
		text: strings.TrimSpace(f.text),
	}
	if err := validateOptions(opts); err != nil {
		return testOptions{}, err
	}
	return opts, nil
}

func validateOptions(o testOptions) error {
	if o.cfg.TimeLimit <= 0 {
		return fmt.Errorf("--time must be > 0")
	}
	if o.cfg.WordLimit <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if o.cfg.Lang == "" {
		return fmt.Errorf("--lang must not be empty")
	}
	if o.cfg.Mode == model.ModeCustom && o.text == "" {
		return fmt.Errorf("--text is required in custom mode")
	}
	if o.focus.Top < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if o.focus.Factor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if o.focus.Window < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}

func languageError(lang string, available []string, err error) error {
	if !errors.Is(err, generator.ErrUnknownLanguage) {
		return err
	}
	lines := []string{fmt.Sprintf("language %q not found", lang)}
	if suggestions := suggestLangs(lang, available, 3); len(suggestions) > 0 {
		lines = append(lines, "Did you mean: "+strings.Join(suggestions, ", "))
	}
	lines = append(lines,
		"Run: speedtype langs",
		fmt.Sprintf("Add a word list at: %s", filepath.Join(config.DefaultWordListDir(), lang+".txt")),
	)
	return fmt.Errorf("%s: %w", strings.Join(lines, "\n"), err)
}

// suggestLangs returns up to n languages fuzzily matching query, best first.
func suggestLangs(query string, available []string, n int) []string {
	matches := fuzzy.Find(query, available)
	out := make([]string, 0, min(n, len(matches)))
	for _, match := range matches {
		if len(out) == n {
			break
		}
		out = append(out, match.Str)
	}
	return out
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// ensureConfigFile writes the commented template unless a config already exists.
func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.Template()), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs [query]",
		Short: "List available languages",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, args []string) error {
	corpus, err := generator.DefaultCorpus(config.DefaultWordListDir())
	if err != nil {
		return err
	}
	langs := corpus.Languages()
	if len(args) == 1 {
		langs = suggestLangs(args[0], langs, len(langs))
		if len(langs) == 0 {
			return fmt.Errorf("no language matches %q", args[0])
		}
	}
	for _, lang := range langs {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), lang); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func openStore() (*store.Store, func(), error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}, nil
}

func stringPtr[T fmt.Stringer](v *T) *string {
	if v == nil {
		return nil
	}
	s := (*v).String()
	return &s
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
