// Package engine runs a typing test from first key to final result.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/speedtype/internal/generator"
	"github.com/verte-zerg/speedtype/internal/input"
	"github.com/verte-zerg/speedtype/internal/logging"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/stats"
)

const (
	tickInterval = time.Second
	// refillThreshold is how close to the end of an open-ended sequence the
	// index may get before more words are appended.
	refillThreshold = 50
)

// ErrActive is returned when an operation needs the run to be stopped.
var ErrActive = errors.New("test is running")

// WordSource produces the words of a run.
type WordSource interface {
	Generate(cfg model.Config) (generator.Batch, error)
	Extend(cfg model.Config, count int) ([]string, error)
}

// Option customizes a Lifecycle.
type Option func(*Lifecycle)

// WithClock sets the time source.
func WithClock(c Clock) Option {
	return func(l *Lifecycle) { l.clock = c }
}

// WithScheduler sets the timer driver. Without one, timers never fire.
func WithScheduler(s Scheduler) Option {
	return func(l *Lifecycle) { l.sched = s }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Lifecycle) { l.log = log }
}

// WithResultHandler registers fn to receive every completed result.
func WithResultHandler(fn func(model.Result)) Option {
	return func(l *Lifecycle) { l.onResult = fn }
}

// Snapshot is a read-only copy of the live run state.
type Snapshot struct {
	Phase        input.Phase
	Config       model.Config
	Settings     model.Settings
	Words        []string
	Index        int
	Buffer       string
	Live         []model.CharState
	History      []model.CompletedWord
	Samples      []model.WpmSample
	Remaining    int
	Elapsed      time.Duration
	RestartArmed bool
	QuoteSource  string
}

// Lifecycle owns all state of one typing test. It is single-writer: every
// method, and every scheduler callback, must run on the same goroutine.
type Lifecycle struct {
	cfg      model.Config
	settings model.Settings
	gen      WordSource
	clock    Clock
	sched    Scheduler
	log      *slog.Logger
	onResult func(model.Result)

	machine     *input.Machine
	words       []string
	quoteSource string
	custom      []string

	run       int
	startedAt time.Time
	endedAt   time.Time
	remaining int
	samples   []model.WpmSample
	cancels   []func()
	result    *model.Result
}

// New builds an idle Lifecycle with a freshly generated word sequence.
func New(cfg model.Config, settings model.Settings, gen WordSource, opts ...Option) (*Lifecycle, error) {
	l := &Lifecycle{
		cfg:      cfg,
		settings: settings,
		gen:      gen,
		clock:    RealClock{},
		sched:    nopScheduler{},
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.reset(cfg, settings, input.CauseCommand); err != nil {
		return nil, err
	}
	return l, nil
}

// Key applies one keystroke and reports what it did. An error is returned only
// when a restart triggered by the key fails to generate words.
func (l *Lifecycle) Key(k input.Key) (input.Outcome, error) {
	if l.machine.Phase() == input.PhaseIdle && len(l.words) == 0 {
		return input.Outcome{Effect: input.EffectIgnored}, nil
	}
	now := l.clock.Now()
	out := l.machine.Handle(k, l.currentWord(), now)
	if out.Started {
		l.start(now)
	}
	switch out.Effect {
	case input.EffectRestart:
		return out, l.Restart(out.Cause)
	case input.EffectWordCommitted:
		l.refill()
	}
	l.checkCompletion()
	return out, nil
}

// Restart discards the run and generates a new sequence from the current
// config. On error the current state is left untouched.
func (l *Lifecycle) Restart(cause input.RestartCause) error {
	return l.reset(l.cfg, l.settings, cause)
}

// Configure replaces the config and settings and restarts. It fails with
// ErrActive while a run is in progress.
func (l *Lifecycle) Configure(cfg model.Config, settings model.Settings) error {
	if l.machine.Phase() == input.PhaseActive {
		return ErrActive
	}
	return l.reset(cfg, settings, input.CauseCommand)
}

// SetCustomText sets the text used by custom mode and restarts when custom
// mode is selected.
func (l *Lifecycle) SetCustomText(text string) error {
	if l.machine.Phase() == input.PhaseActive {
		return ErrActive
	}
	l.custom = strings.Fields(text)
	if l.cfg.Mode != model.ModeCustom {
		return nil
	}
	return l.Restart(input.CauseCommand)
}

// Finish ends an active run now. It is the only way a zen run completes.
func (l *Lifecycle) Finish() {
	if l.machine.Phase() != input.PhaseActive {
		return
	}
	l.complete()
}

// Result returns the result once the current run is complete.
func (l *Lifecycle) Result() (model.Result, bool) {
	if l.result == nil {
		return model.Result{}, false
	}
	return *l.result, true
}

// Phase returns the current run phase.
func (l *Lifecycle) Phase() input.Phase { return l.machine.Phase() }

// Snapshot copies the live state for rendering.
func (l *Lifecycle) Snapshot() Snapshot {
	words := make([]string, len(l.words))
	copy(words, l.words)
	samples := make([]model.WpmSample, len(l.samples))
	copy(samples, l.samples)
	return Snapshot{
		Phase:        l.machine.Phase(),
		Config:       l.cfg,
		Settings:     l.settings,
		Words:        words,
		Index:        l.machine.Index(),
		Buffer:       l.machine.Buffer(),
		Live:         l.machine.Live(l.currentWord()),
		History:      l.machine.History(),
		Samples:      samples,
		Remaining:    l.remaining,
		Elapsed:      l.elapsed(),
		RestartArmed: l.machine.RestartArmed(),
		QuoteSource:  l.quoteSource,
	}
}

func (l *Lifecycle) reset(cfg model.Config, settings model.Settings, cause input.RestartCause) error {
	cfg = withDefaults(cfg)
	var batch generator.Batch
	if cfg.Mode == model.ModeCustom {
		batch.Words = append([]string{}, l.custom...)
	} else {
		var err error
		batch, err = l.gen.Generate(cfg)
		if err != nil {
			return fmt.Errorf("failed to generate words: %w", err)
		}
	}

	l.stopTimers()
	l.run++
	l.cfg = cfg
	l.settings = settings
	l.machine = input.NewMachine(cfg.Difficulty, settings)
	l.words = batch.Words
	l.quoteSource = batch.QuoteSource
	l.startedAt = time.Time{}
	l.endedAt = time.Time{}
	l.remaining = cfg.TimeLimit
	l.samples = nil
	l.result = nil
	l.log.Debug("run reset", "run", l.run, "cause", cause.String(), "mode", cfg.Mode.String(), "words", len(l.words))
	return nil
}

func withDefaults(cfg model.Config) model.Config {
	if cfg.Mode == model.ModeTime && cfg.TimeLimit <= 0 {
		cfg.TimeLimit = generator.DefaultTimeLimit
	}
	if cfg.Mode == model.ModeWords && cfg.WordLimit <= 0 {
		cfg.WordLimit = generator.DefaultWordLimit
	}
	return cfg
}

func (l *Lifecycle) start(now time.Time) {
	l.startedAt = now
	l.samples = nil
	l.remaining = l.cfg.TimeLimit
	run := l.run
	l.cancels = append(l.cancels, l.sched.Every(tickInterval, func() {
		if l.run != run || l.machine.Phase() != input.PhaseActive {
			return
		}
		l.samples = append(l.samples, stats.Sample(l.machine.History(), l.clock.Now().Sub(l.startedAt)))
	}))
	if l.cfg.Mode == model.ModeTime {
		l.cancels = append(l.cancels, l.sched.Every(tickInterval, func() {
			if l.run != run || l.machine.Phase() != input.PhaseActive {
				return
			}
			l.remaining--
			if l.remaining <= 0 {
				l.remaining = 0
				l.complete()
			}
		}))
	}
	l.log.Info("run started", "run", run, "mode", l.cfg.Mode.String())
}

func (l *Lifecycle) checkCompletion() {
	if l.machine.Phase() != input.PhaseActive {
		return
	}
	idx := l.machine.Index()
	switch l.cfg.Mode {
	case model.ModeWords, model.ModeQuote, model.ModeCustom:
		if idx >= len(l.words) {
			l.complete()
			return
		}
	}
	if l.settings.QuickEnd && idx == len(l.words)-1 && l.machine.Buffer() != "" {
		l.complete()
	}
}

func (l *Lifecycle) refill() {
	if l.cfg.Mode != model.ModeZen && l.cfg.Mode != model.ModeTime {
		return
	}
	if len(l.words)-l.machine.Index() > refillThreshold {
		return
	}
	count := refillThreshold
	if l.cfg.Mode == model.ModeZen {
		count = generator.ZenPoolSize
	}
	more, err := l.gen.Extend(l.cfg, count)
	if err != nil {
		l.log.Warn("failed to extend words", "err", err)
		return
	}
	l.words = append(l.words, more...)
}

func (l *Lifecycle) complete() {
	l.stopTimers()
	l.machine.Complete()
	l.endedAt = l.clock.Now()
	elapsed := l.endedAt.Sub(l.startedAt)
	history := l.machine.History()
	samples := make([]model.WpmSample, len(l.samples))
	copy(samples, l.samples)

	r := model.Result{
		ID:          uuid.NewString(),
		CreatedAt:   l.endedAt,
		StartedAt:   l.startedAt,
		EndedAt:     l.endedAt,
		Config:      l.cfg,
		Settings:    l.settings,
		Stats:       stats.Final(history, samples, elapsed),
		Samples:     samples,
		History:     history,
		QuoteSource: l.quoteSource,
	}
	l.result = &r
	l.log.Info("run complete", "run", l.run, "wpm", r.Stats.WPM, "accuracy", r.Stats.Accuracy, "elapsed", elapsed)
	if l.onResult != nil {
		l.onResult(r)
	}
}

func (l *Lifecycle) stopTimers() {
	for _, cancel := range l.cancels {
		cancel()
	}
	l.cancels = nil
}

func (l *Lifecycle) currentWord() string {
	idx := l.machine.Index()
	if idx >= len(l.words) {
		return ""
	}
	return l.words[idx]
}

func (l *Lifecycle) elapsed() time.Duration {
	switch {
	case l.startedAt.IsZero():
		return 0
	case !l.endedAt.IsZero():
		return l.endedAt.Sub(l.startedAt)
	default:
		return l.clock.Now().Sub(l.startedAt)
	}
}
