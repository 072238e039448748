// Package wordlist loads word lists from files.
package wordlist

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

// ErrEmpty is returned when a word list contains no words.
var ErrEmpty = errors.New("word list is empty")

// LoadWords reads a word list from the provided file path.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	return ReadWords(file)
}

// ReadWords reads whitespace-separated words, keeping the first occurrence of each.
func ReadWords(r io.Reader) ([]string, error) {
	seen := map[string]struct{}{}
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		for _, word := range strings.Fields(scanner.Text()) {
			if _, ok := seen[word]; ok {
				continue
			}
			seen[word] = struct{}{}
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrEmpty
	}
	return words, nil
}
