package wordlist

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadWordsDedupes(t *testing.T) {
	words, err := ReadWords(strings.NewReader("alpha beta\n\n  gamma\nalpha\n"))
	if err != nil {
		t.Fatalf("read words: %v", err)
	}
	want := []string{"alpha", "beta", "gamma"}
	if strings.Join(words, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, words)
	}
}

func TestReadWordsEmpty(t *testing.T) {
	if _, err := ReadWords(strings.NewReader("\n \n")); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestLoadWordsMissingFile(t *testing.T) {
	_, err := LoadWords(filepath.Join(t.TempDir(), "nope.txt"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "de.txt")
	if err := os.WriteFile(path, []byte("haus\nbaum\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	words, err := LoadWords(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
}
