// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"time"

	"github.com/verte-zerg/speedtype/internal/model"
)

// charsPerWord is the standard word length used by WPM.
const charsPerWord = 5.0

// consistencyScale maps a coefficient of variation of 0.3 or more to 0.
const consistencyScale = 333

// CorrectChars sums the length of every word typed exactly right.
func CorrectChars(history []model.CompletedWord) int {
	total := 0
	for _, w := range history {
		if w.Typed != w.Word {
			continue
		}
		if allCorrect(w.States) {
			total += runeLen(w.Word)
		}
	}
	return total
}

// RawChars sums the length of everything typed, right or wrong.
func RawChars(history []model.CompletedWord) int {
	total := 0
	for _, w := range history {
		total += runeLen(w.Typed)
	}
	return total
}

// WPM counts only characters of fully correct words.
func WPM(history []model.CompletedWord, elapsed time.Duration) int {
	return perMinute(CorrectChars(history), elapsed)
}

// RawWPM counts every typed character.
func RawWPM(history []model.CompletedWord, elapsed time.Duration) int {
	return perMinute(RawChars(history), elapsed)
}

// Accuracy is the share of correct states across history, in percent with two
// decimals. No states at all is treated as perfect.
func Accuracy(history []model.CompletedWord) float64 {
	correct, total := 0, 0
	for _, w := range history {
		for _, s := range w.States {
			total++
			if s == model.StateCorrect {
				correct++
			}
		}
	}
	if total == 0 {
		return 100
	}
	return math.Round(float64(correct)/float64(total)*100*100) / 100
}

// Consistency scores how steady the sampled WPM was, from 0 to 100. It maps the
// coefficient of variation linearly (100 - cv*333) and is a heuristic, not a
// normalized statistic.
func Consistency(samples []model.WpmSample) int {
	if len(samples) < 2 {
		return 100
	}
	sum := 0.0
	for _, s := range samples {
		sum += float64(s.WPM)
	}
	mean := sum / float64(len(samples))
	if mean == 0 {
		return 100
	}
	variance := 0.0
	for _, s := range samples {
		d := float64(s.WPM) - mean
		variance += d * d
	}
	variance /= float64(len(samples))
	cv := math.Sqrt(variance) / mean
	return int(math.Round(math.Max(0, 100-cv*consistencyScale)))
}

// Breakdown counts character states across history. Missed characters come
// from the per-character states only, so incomplete words are counted once.
func Breakdown(history []model.CompletedWord) (correct, incorrect, extra, missed int) {
	for _, w := range history {
		for _, s := range w.States {
			switch s {
			case model.StateCorrect:
				correct++
			case model.StateIncorrect:
				incorrect++
			case model.StateExtra:
				extra++
			case model.StateMissed:
				missed++
			}
		}
	}
	return correct, incorrect, extra, missed
}

// Sample measures the run so far.
func Sample(history []model.CompletedWord, elapsed time.Duration) model.WpmSample {
	return model.WpmSample{
		Elapsed:  elapsed.Seconds(),
		WPM:      WPM(history, elapsed),
		RawWPM:   RawWPM(history, elapsed),
		Accuracy: Accuracy(history),
	}
}

// Final builds the report of a finished run.
func Final(history []model.CompletedWord, samples []model.WpmSample, elapsed time.Duration) model.Stats {
	correct, incorrect, extra, missed := Breakdown(history)
	return model.Stats{
		WPM:         WPM(history, elapsed),
		RawWPM:      RawWPM(history, elapsed),
		Accuracy:    Accuracy(history),
		Consistency: Consistency(samples),
		Correct:     correct,
		Incorrect:   incorrect,
		Extra:       extra,
		Missed:      missed,
		Elapsed:     int(math.Round(elapsed.Seconds())),
	}
}

func perMinute(chars int, elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	return int(math.Round((float64(chars) / charsPerWord) / elapsed.Minutes()))
}

func allCorrect(states []model.CharState) bool {
	for _, s := range states {
		if s != model.StateCorrect {
			return false
		}
	}
	return true
}

func runeLen(s string) int {
	return len([]rune(s))
}
