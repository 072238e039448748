package input

import (
	"strings"
	"time"

	"github.com/verte-zerg/speedtype/internal/diff"
	"github.com/verte-zerg/speedtype/internal/model"
)

// Phase is the run phase seen by the state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActive
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseActive:
		return "active"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Effect is what a keystroke did.
type Effect int

const (
	EffectIgnored Effect = iota
	// EffectArmed means Tab latched the quick-restart flag.
	EffectArmed
	EffectTyped
	EffectDeleted
	// EffectRejected means a policy swallowed the key.
	EffectRejected
	EffectWordCommitted
	// EffectRestart asks the owner to restart the run; Outcome.Cause says why.
	EffectRestart
)

// RestartCause tells why a restart was requested.
type RestartCause int

const (
	CauseCommand RestartCause = iota
	CauseQuickRestart
	CauseExpert
	CauseMaster
)

func (c RestartCause) String() string {
	switch c {
	case CauseCommand:
		return "command"
	case CauseQuickRestart:
		return "quick restart"
	case CauseExpert:
		return "expert: incorrect word"
	case CauseMaster:
		return "master: incorrect key"
	default:
		return "unknown"
	}
}

// Outcome reports the result of one keystroke.
type Outcome struct {
	Effect Effect
	Cause  RestartCause
	// Started is set when this key moved the machine from idle to active.
	Started bool
}

// Machine tracks the input buffer and completed-word history of one run.
// It is not safe for concurrent use.
type Machine struct {
	difficulty model.Difficulty
	settings   model.Settings

	phase      Phase
	buffer     []rune
	armed      bool
	history    []model.CompletedWord
	lastCommit time.Time
}

// NewMachine returns an idle machine.
func NewMachine(difficulty model.Difficulty, settings model.Settings) *Machine {
	return &Machine{difficulty: difficulty, settings: settings}
}

// Reset discards all run state and returns to idle.
func (m *Machine) Reset() {
	m.phase = PhaseIdle
	m.buffer = nil
	m.armed = false
	m.history = nil
	m.lastCommit = time.Time{}
}

// Start moves an idle machine to active.
func (m *Machine) Start(now time.Time) {
	if m.phase != PhaseIdle {
		return
	}
	m.phase = PhaseActive
	m.buffer = nil
	m.history = nil
	m.lastCommit = now
}

// Complete locks the machine; only Reset leaves this phase.
func (m *Machine) Complete() {
	m.phase = PhaseComplete
	m.armed = false
}

// Handle applies one keystroke. target is the word at the current index, or
// "" when the sequence is exhausted.
func (m *Machine) Handle(k Key, target string, now time.Time) Outcome {
	var out Outcome
	switch m.phase {
	case PhaseComplete:
		return m.handleComplete(k)
	case PhaseIdle:
		m.Start(now)
		out.Started = true
	}

	if k.Kind == KeyTab {
		m.armed = true
		out.Effect = EffectArmed
		return out
	}
	armed := m.armed
	m.armed = false
	if k.Kind == KeyEnter {
		if armed && m.settings.QuickRestart {
			out.Effect = EffectRestart
			out.Cause = CauseQuickRestart
		}
		return out
	}
	if target == "" {
		return out
	}

	switch k.Kind {
	case KeyBackspace:
		out.Effect = m.backspace()
	case KeySpace:
		out.Effect, out.Cause = m.space(target, now)
	case KeyRune:
		out.Effect, out.Cause = m.typeRune(k.Rune, target)
	}
	return out
}

func (m *Machine) handleComplete(k Key) Outcome {
	switch k.Kind {
	case KeyTab:
		m.armed = true
		return Outcome{Effect: EffectArmed}
	case KeyEnter:
		armed := m.armed
		m.armed = false
		if armed && m.settings.QuickRestart {
			return Outcome{Effect: EffectRestart, Cause: CauseQuickRestart}
		}
	default:
		m.armed = false
	}
	return Outcome{Effect: EffectIgnored}
}

func (m *Machine) backspace() Effect {
	switch m.settings.Confidence {
	case model.ConfidenceFull:
		return EffectRejected
	case model.ConfidencePartial:
		if len(m.buffer) == 0 {
			return EffectRejected
		}
	}
	if len(m.buffer) == 0 {
		return EffectIgnored
	}
	m.buffer = m.buffer[:len(m.buffer)-1]
	return EffectDeleted
}

func (m *Machine) space(target string, now time.Time) (Effect, RestartCause) {
	if len(m.buffer) == 0 {
		return EffectIgnored, 0
	}
	typed := string(m.buffer)
	exact := typed == target
	if m.difficulty == model.DifficultyExpert && !exact {
		return EffectRestart, CauseExpert
	}
	if m.settings.StopOnError == model.StopWord && !exact {
		return EffectRejected, 0
	}
	m.history = append(m.history, diff.Word(target, typed, now, now.Sub(m.lastCommit)))
	m.lastCommit = now
	m.buffer = nil
	return EffectWordCommitted, 0
}

func (m *Machine) typeRune(r rune, target string) (Effect, RestartCause) {
	candidate := string(m.buffer) + string(r)
	if m.difficulty == model.DifficultyMaster && !strings.HasPrefix(target, candidate) {
		return EffectRestart, CauseMaster
	}
	if m.settings.StopOnError == model.StopLetter {
		want := []rune(target)
		pos := len(m.buffer)
		if pos >= len(want) || want[pos] != r {
			return EffectRejected, 0
		}
	}
	m.buffer = append(m.buffer, r)
	return EffectTyped, 0
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.phase }

// Buffer returns the input typed for the current word.
func (m *Machine) Buffer() string { return string(m.buffer) }

// Index returns the current word index; it always equals len(History()).
func (m *Machine) Index() int { return len(m.history) }

// RestartArmed reports whether Tab was the last key.
func (m *Machine) RestartArmed() bool { return m.armed }

// History returns a copy of the completed words.
func (m *Machine) History() []model.CompletedWord {
	out := make([]model.CompletedWord, len(m.history))
	copy(out, m.history)
	return out
}

// Live classifies the current buffer against target.
func (m *Machine) Live(target string) []model.CharState {
	return diff.Live(target, string(m.buffer))
}
