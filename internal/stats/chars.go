package stats

import (
	"sort"

	"github.com/verte-zerg/speedtype/internal/model"
)

// CharAggregates tallies outcomes per expected character. Extra characters have
// no expected character and are not counted.
func CharAggregates(history []model.CompletedWord) []model.CharAggregate {
	byChar := map[rune]*model.CharAggregate{}
	for _, w := range history {
		source := []rune(w.Word)
		for i, s := range w.States {
			if i >= len(source) {
				break
			}
			agg, ok := byChar[source[i]]
			if !ok {
				agg = &model.CharAggregate{Char: string(source[i])}
				byChar[source[i]] = agg
			}
			switch s {
			case model.StateCorrect:
				agg.Correct++
			case model.StateIncorrect:
				agg.Incorrect++
			case model.StateMissed:
				agg.Missed++
			}
		}
	}
	out := make([]model.CharAggregate, 0, len(byChar))
	for _, agg := range byChar {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Char < out[j].Char })
	return out
}

// SelectWeakChars selects the lowest-accuracy characters from aggregates.
func SelectWeakChars(aggs []model.CharAggregate, top int) map[rune]struct{} {
	weakSet := map[rune]struct{}{}
	if len(aggs) == 0 {
		return weakSet
	}
	candidates := make([]model.CharAggregate, len(aggs))
	copy(candidates, aggs)
	sort.Slice(candidates, func(i, j int) bool {
		ai := CharAccuracy(candidates[i])
		aj := CharAccuracy(candidates[j])
		if ai == aj {
			return candidates[i].Char < candidates[j].Char
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	for i := 0; i < top; i++ {
		// A perfect character is never weak.
		if CharAccuracy(candidates[i]) >= 1 {
			break
		}
		runes := []rune(candidates[i].Char)
		if len(runes) > 0 {
			weakSet[runes[0]] = struct{}{}
		}
	}
	return weakSet
}

// TopCharsByFrequency returns the top N characters by total frequency.
func TopCharsByFrequency(aggs []model.CharAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	items := make([]model.CharAggregate, len(aggs))
	copy(items, aggs)
	sort.Slice(items, func(i, j int) bool {
		ti, tj := charTotal(items[i]), charTotal(items[j])
		if ti == tj {
			return items[i].Char < items[j].Char
		}
		return ti > tj
	})
	n = min(n, len(items))
	out := make([]string, 0, n)
	for _, item := range items[:n] {
		out = append(out, item.Char)
	}
	return out
}

// CharAccuracy is the share of correct outcomes for one character, 0 to 1.
func CharAccuracy(agg model.CharAggregate) float64 {
	total := charTotal(agg)
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}

func charTotal(agg model.CharAggregate) int {
	return agg.Correct + agg.Incorrect + agg.Missed
}
