package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/speedtype/internal/input"
)

type keyMap struct {
	Quit    key.Binding
	Restart key.Binding
	Finish  key.Binding
	Again   key.Binding
}

func defaultKeyMap(quickRestart bool) keyMap {
	km := keyMap{
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
		Restart: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "restart")),
		Finish:  key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "finish")),
		Again:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab enter", "next test")),
	}
	// Tab is always delivered to the engine; the binding only feeds help.
	km.Again.SetEnabled(quickRestart)
	return km
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Again, k.Restart, k.Finish, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// engineKeys translates a terminal key event into engine keystrokes.
func engineKeys(msg tea.KeyMsg) []input.Key {
	switch msg.Type {
	case tea.KeyRunes:
		if msg.Paste {
			return nil
		}
		return input.Runes(string(msg.Runes))
	case tea.KeySpace:
		return []input.Key{{Kind: input.KeySpace}}
	case tea.KeyBackspace, tea.KeyDelete:
		return []input.Key{{Kind: input.KeyBackspace}}
	case tea.KeyTab:
		return []input.Key{{Kind: input.KeyTab}}
	case tea.KeyEnter:
		return []input.Key{{Kind: input.KeyEnter}}
	default:
		return nil
	}
}
