package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/speedtype/internal/diff"
	"github.com/verte-zerg/speedtype/internal/model"
)

const (
	// Words kept on screen before and after the current one.
	wordsBehind = 40
	wordsAhead  = 120
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// textView is what the typing screen needs from a run.
type textView struct {
	words   []string
	history []model.CompletedWord
	index   int
	buffer  string
	cursor  bool
}

func buildStyledRunes(v textView) []styledRune {
	from, to := visibleRange(v.index, len(v.words))
	out := make([]styledRune, 0, (to-from)*6)
	// cursorNext is set when the cursor sits past the end of the current word.
	cursorNext := false
	for i := from; i < to; i++ {
		if i > from {
			style := pendingStyle
			if cursorNext {
				style = cursorStyle
				cursorNext = false
			}
			out = append(out, styledRune{s: style.Render(" "), width: 1, isSpace: true})
		}
		switch {
		case i < v.index && i < len(v.history):
			h := v.history[i]
			out = appendWord(out, []rune(h.Word), []rune(h.Typed), h.States, -1)
		case i == v.index:
			cursor := -1
			if v.cursor {
				cursor = len([]rune(v.buffer))
			}
			states := diff.Live(v.words[i], v.buffer)
			out = appendWord(out, []rune(v.words[i]), []rune(v.buffer), states, cursor)
			cursorNext = cursor >= len(states)
		default:
			for _, r := range v.words[i] {
				out = append(out, styledRune{s: pendingStyle.Render(string(r)), width: runewidth.RuneWidth(r)})
			}
		}
	}
	if cursorNext {
		out = append(out, styledRune{s: cursorStyle.Render(" "), width: 1, isSpace: true})
	}
	return out
}

func appendWord(out []styledRune, source, typed []rune, states []model.CharState, cursor int) []styledRune {
	for j, state := range states {
		var displayed rune
		if j < len(source) {
			displayed = source[j]
		} else {
			displayed = typed[j]
		}
		style := pendingStyle
		switch state {
		case model.StateCorrect:
			style = correctStyle
		case model.StateIncorrect:
			style = incorrectStyle
		case model.StateExtra:
			style = extraStyle
		case model.StateMissed:
			style = missedStyle
		case model.StatePending:
			style = currentWordStyle
		}
		if j == cursor {
			style = style.Underline(true)
		}
		out = append(out, styledRune{s: style.Render(string(displayed)), width: runewidth.RuneWidth(displayed)})
	}
	return out
}

func visibleRange(index, total int) (int, int) {
	from := max(0, index-wordsBehind)
	to := min(total, index+wordsAhead)
	return from, max(from, to)
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
