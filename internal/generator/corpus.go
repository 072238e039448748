package generator

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/wordlist"
)

// EmbeddedLang is the language shipped inside the binary.
const EmbeddedLang = "en"

var (
	// ErrUnknownLanguage is returned when no word list exists for a language.
	ErrUnknownLanguage = errors.New("unknown language")
	// ErrEmptyCorpus is returned when a word or quote pool has no entries.
	ErrEmptyCorpus = errors.New("empty corpus")
)

//go:embed data/english.txt
var englishWords string

//go:embed data/quotes.json
var quotesJSON []byte

// Quote is one entry of the quote pool.
type Quote struct {
	Text   string
	Source string
	Length model.QuoteLength
}

// Corpus holds word lists per language and the quote pool.
type Corpus struct {
	dir    string
	langs  map[string][]string
	quotes []Quote
}

// DefaultCorpus returns the embedded corpus. Extra languages are looked up in dir
// as <lang>.txt, one word per line; an empty dir disables the lookup.
func DefaultCorpus(dir string) (*Corpus, error) {
	quotes, err := ParseQuotes(quotesJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded quotes: %w", err)
	}
	english, err := wordlist.ReadWords(strings.NewReader(englishWords))
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded word list: %w", err)
	}
	english = wordlist.Filter(english, wordlist.FilterForLang(EmbeddedLang))
	return NewCorpus(dir, map[string][]string{EmbeddedLang: english}, quotes), nil
}

// NewCorpus builds a corpus from in-memory lists.
func NewCorpus(dir string, langs map[string][]string, quotes []Quote) *Corpus {
	c := &Corpus{dir: dir, langs: map[string][]string{}, quotes: quotes}
	for lang, words := range langs {
		c.langs[normalizeLang(lang)] = words
	}
	return c
}

// Words returns the dictionary for lang, loading it from disk on first use.
func (c *Corpus) Words(lang string) ([]string, error) {
	lang = normalizeLang(lang)
	if words, ok := c.langs[lang]; ok {
		if len(words) == 0 {
			return nil, fmt.Errorf("%s: %w", lang, ErrEmptyCorpus)
		}
		return words, nil
	}
	if c.dir == "" || !validLangName(lang) {
		return nil, fmt.Errorf("%s: %w", lang, ErrUnknownLanguage)
	}
	path := filepath.Join(c.dir, lang+".txt")
	words, err := wordlist.LoadWords(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", lang, ErrUnknownLanguage)
		}
		return nil, fmt.Errorf("failed to load %s word list: %w", lang, err)
	}
	kept := wordlist.Filter(words, wordlist.FilterForLang(lang))
	if len(kept) == 0 {
		return nil, fmt.Errorf("%s: %w", lang, ErrEmptyCorpus)
	}
	c.langs[lang] = kept
	return kept, nil
}

// Languages lists the embedded language plus every word list found in the directory.
func (c *Corpus) Languages() []string {
	set := map[string]struct{}{}
	for lang := range c.langs {
		set[lang] = struct{}{}
	}
	if c.dir != "" {
		entries, err := os.ReadDir(c.dir)
		if err == nil {
			for _, entry := range entries {
				name := entry.Name()
				if entry.IsDir() || !strings.HasSuffix(name, ".txt") {
					continue
				}
				set[strings.TrimSuffix(name, ".txt")] = struct{}{}
			}
		}
	}
	langs := make([]string, 0, len(set))
	for lang := range set {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Quotes returns the quotes of the requested length class, or the whole pool
// when none match.
func (c *Corpus) Quotes(length model.QuoteLength) []Quote {
	want := length
	if want == model.QuoteThicc {
		want = model.QuoteLong
	}
	var out []Quote
	for _, q := range c.quotes {
		if q.Length == want {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return c.quotes
	}
	return out
}

// ParseQuotes decodes a quote pool document of the form
// {"quotes": [{"text": ..., "source": ..., "length": "short|medium|long"}]}.
func ParseQuotes(data []byte) ([]Quote, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid quotes JSON")
	}
	var (
		quotes []Quote
		err    error
	)
	gjson.GetBytes(data, "quotes").ForEach(func(_, value gjson.Result) bool {
		text := strings.TrimSpace(value.Get("text").String())
		if text == "" {
			return true
		}
		length, perr := model.ParseQuoteLength(value.Get("length").String())
		if perr != nil {
			err = fmt.Errorf("quote %q: %w", text, perr)
			return false
		}
		quotes = append(quotes, Quote{
			Text:   text,
			Source: value.Get("source").String(),
			Length: length,
		})
		return true
	})
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, ErrEmptyCorpus
	}
	return quotes, nil
}

// validLangName reports whether lang can name a file inside the word list directory.
func validLangName(lang string) bool {
	return lang != "" && !strings.ContainsAny(lang, `/\:`) && !strings.Contains(lang, "..")
}

func normalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	switch lang {
	case "", "english":
		return EmbeddedLang
	}
	return lang
}
