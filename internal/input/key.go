// Package input implements the per-keystroke state machine of a typing test.
package input

import "fmt"

// KeyKind identifies the keys the engine reacts to.
type KeyKind int

const (
	// KeyRune is a printable character; the character is in Key.Rune.
	KeyRune KeyKind = iota
	KeySpace
	KeyBackspace
	KeyTab
	KeyEnter
)

// Key is one discrete key event.
type Key struct {
	Kind KeyKind
	Rune rune
}

// Rune returns the key event for a typed character. A space maps to KeySpace.
func Rune(r rune) Key {
	if r == ' ' {
		return Key{Kind: KeySpace}
	}
	return Key{Kind: KeyRune, Rune: r}
}

// Runes converts text into the key events that would type it.
func Runes(s string) []Key {
	keys := make([]Key, 0, len(s))
	for _, r := range s {
		keys = append(keys, Rune(r))
	}
	return keys
}

// String returns a human-readable name for the key.
func (k Key) String() string {
	switch k.Kind {
	case KeyRune:
		return string(k.Rune)
	case KeySpace:
		return "space"
	case KeyBackspace:
		return "backspace"
	case KeyTab:
		return "tab"
	case KeyEnter:
		return "enter"
	default:
		return fmt.Sprintf("key(%d)", int(k.Kind))
	}
}
