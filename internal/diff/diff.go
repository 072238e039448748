// Package diff classifies typed text against source words, character by character.
package diff

import (
	"time"

	"github.com/verte-zerg/speedtype/internal/model"
)

// States classifies typed against source. The result has
// max(len(source), len(typed)) entries, counted in runes.
func States(source, typed string) []model.CharState {
	return classify([]rune(source), []rune(typed), model.StateMissed)
}

// Live classifies the word currently being typed. Positions not reached yet
// are pending rather than missed.
func Live(source, typed string) []model.CharState {
	return classify([]rune(source), []rune(typed), model.StatePending)
}

// Word freezes a completed-word record.
func Word(source, typed string, at time.Time, took time.Duration) model.CompletedWord {
	return model.CompletedWord{
		Word:        source,
		Typed:       typed,
		States:      States(source, typed),
		CompletedAt: at,
		Duration:    took,
	}
}

func classify(src, in []rune, untyped model.CharState) []model.CharState {
	n := len(src)
	if len(in) > n {
		n = len(in)
	}
	states := make([]model.CharState, n)
	for i := 0; i < n; i++ {
		switch {
		case i >= len(src):
			states[i] = model.StateExtra
		case i >= len(in):
			states[i] = untyped
		case src[i] == in[i]:
			states[i] = model.StateCorrect
		default:
			states[i] = model.StateIncorrect
		}
	}
	return states
}
