package wordlist

import "testing"

func TestFilterEnglishASCII(t *testing.T) {
	filter := FilterForLang("en")
	if !filter("hello") {
		t.Fatalf("expected hello to pass english filter")
	}
	for _, word := range []string{"résumé", "naïve", "don’t", "co-op", "I"} {
		if filter(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
}

func TestFilterLettersForOtherLangs(t *testing.T) {
	filter := FilterForLang("de")
	for _, word := range []string{"straße", "über", "Haus"} {
		if !filter(word) {
			t.Fatalf("expected %q to pass", word)
		}
	}
	for _, word := range []string{"", "42", "a-b"} {
		if filter(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
}

func TestFilterKeepsOrder(t *testing.T) {
	got := Filter([]string{"b", "A", "a"}, FilterForLang("en"))
	if len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Fatalf("unexpected filter output: %v", got)
	}
}
