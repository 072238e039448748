// Package generator builds typing text sequences.
package generator

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/verte-zerg/speedtype/internal/model"
)

const (
	// DefaultWordLimit is used when a words-mode config has no limit.
	DefaultWordLimit = 25
	// DefaultTimeLimit is used when a time-mode config has no limit.
	DefaultTimeLimit = 30
	// ZenPoolSize is the number of tokens generated for a zen run.
	ZenPoolSize = 500

	assumedWPM     = 40
	timeModeBuffer = 50
	numberPct      = 0.1
	punctPct       = 0.1
)

var punctMarks = []rune{'.', ',', '!', '?', ';', ':'}

// Source is the randomness the generator draws from. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// Batch is a generated word sequence.
type Batch struct {
	Words []string
	// QuoteSource is the attribution of the quote in quote mode.
	QuoteSource string
}

// Generator produces randomized typing text.
type Generator struct {
	rnd        Source
	corpus     *Corpus
	weakSet    map[rune]struct{}
	weakFactor float64
}

// New returns a Generator seeded with the current time.
func New(corpus *Corpus) *Generator {
	return NewWithSource(corpus, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithSource returns a Generator that draws from src.
func NewWithSource(corpus *Corpus, src Source) *Generator {
	return &Generator{rnd: src, corpus: corpus}
}

// SetWeakFocus biases dictionary words toward the given characters.
// An empty set restores uniform selection.
func (g *Generator) SetWeakFocus(weakSet map[rune]struct{}, factor float64) {
	g.weakSet = weakSet
	g.weakFactor = factor
}

// Generate produces the word sequence for a run.
func (g *Generator) Generate(cfg model.Config) (Batch, error) {
	switch cfg.Mode {
	case model.ModeWords:
		limit := cfg.WordLimit
		if limit <= 0 {
			limit = DefaultWordLimit
		}
		words, err := g.words(cfg, limit)
		return Batch{Words: words}, err
	case model.ModeTime:
		words, err := g.words(cfg, TimeModeCount(cfg.TimeLimit))
		return Batch{Words: words}, err
	case model.ModeZen:
		words, err := g.words(cfg, ZenPoolSize)
		return Batch{Words: words}, err
	case model.ModeQuote:
		return g.quote(cfg)
	case model.ModeCustom:
		return Batch{Words: []string{}}, nil
	default:
		return Batch{}, model.ErrUnknownValue
	}
}

// Extend produces count more tokens for a run that is running out of words.
func (g *Generator) Extend(cfg model.Config, count int) ([]string, error) {
	return g.words(cfg, count)
}

// TimeModeCount sizes a time-mode sequence for a 40 WPM pace plus a fixed buffer.
func TimeModeCount(timeLimit int) int {
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}
	return int(math.Ceil(float64(timeLimit)*assumedWPM/60)) + timeModeBuffer
}

func (g *Generator) words(cfg model.Config, count int) ([]string, error) {
	dict, err := g.corpus.Words(cfg.Lang)
	if err != nil {
		return nil, err
	}
	var weights []float64
	total := 0.0
	if len(g.weakSet) > 0 {
		weights, total = weakWeights(dict, g.weakSet, g.weakFactor)
	}

	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		var word string
		if cfg.Numbers && g.rnd.Float64() < numberPct {
			word = randomNumber(g.rnd)
		} else if weights != nil {
			word = dict[pickWeighted(g.rnd, weights, total)]
		} else {
			word = dict[g.rnd.Intn(len(dict))]
		}
		if cfg.Punctuation {
			word = applyPunct(g.rnd, word)
		}
		result = append(result, word)
	}
	return result, nil
}

func (g *Generator) quote(cfg model.Config) (Batch, error) {
	pool := g.corpus.Quotes(cfg.QuoteLength)
	if len(pool) == 0 {
		return Batch{}, ErrEmptyCorpus
	}
	q := pool[g.rnd.Intn(len(pool))]
	return Batch{Words: strings.Fields(q.Text), QuoteSource: q.Source}, nil
}

func weakWeights(words []string, weakSet map[rune]struct{}, factor float64) ([]float64, float64) {
	weights := make([]float64, len(words))
	total := 0.0
	for i, word := range words {
		weakCount := 0
		for _, r := range word {
			if _, ok := weakSet[r]; ok {
				weakCount++
			}
		}
		w := 1.0 + float64(weakCount)*factor
		weights[i] = w
		total += w
	}
	return weights, total
}

func pickWeighted(rnd Source, weights []float64, total float64) int {
	r := rnd.Float64() * total
	acc := 0.0
	for j, w := range weights {
		acc += w
		if r <= acc {
			return j
		}
	}
	return len(weights) - 1
}

func randomNumber(rnd Source) string {
	digits := rnd.Intn(3) + 1
	var b strings.Builder
	for i := 0; i < digits; i++ {
		b.WriteByte(byte('0' + rnd.Intn(10)))
	}
	return b.String()
}

func applyPunct(rnd Source, word string) string {
	if rnd.Float64() >= punctPct {
		return word
	}
	return word + string(punctMarks[rnd.Intn(len(punctMarks))])
}
