package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

// spinBox is a bounded integer input. Typed text is committed on blur or
// enter; out-of-range values are clamped and unparsable text is discarded.
type spinBox struct {
	label string
	input textinput.Model
	min   int
	max   int
	value int
}

func newSpinBox(label string, minValue, maxValue, value int) spinBox {
	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = len(strconv.Itoa(maxValue))
	input.Width = input.CharLimit + 1
	input.Cursor.SetMode(cursor.CursorStatic)
	s := spinBox{label: label, input: input, min: minValue, max: maxValue}
	s.set(value)
	return s
}

func (s *spinBox) set(value int) {
	s.value = clamp(value, s.min, s.max)
	s.input.SetValue(strconv.Itoa(s.value))
	s.input.CursorEnd()
}

// Value commits any pending text and returns the current value.
func (s *spinBox) Value() int {
	s.commit()
	return s.value
}

func (s *spinBox) commit() {
	text := strings.TrimSpace(s.input.Value())
	parsed, err := strconv.Atoi(text)
	if err != nil {
		s.set(s.value)
		return
	}
	s.set(parsed)
}

func (s *spinBox) step(delta int) {
	s.commit()
	s.set(s.value + delta)
}

func (s *spinBox) focus() tea.Cmd {
	return s.input.Focus()
}

func (s *spinBox) blur() {
	s.commit()
	s.input.Blur()
}

func (s *spinBox) update(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyRunes && !allDigits(msg.Runes) {
		return nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

func (s spinBox) view(labelWidth int) string {
	label := s.label + strings.Repeat(" ", maxInt(0, labelWidth-runewidth.StringWidth(s.label)))
	box := inputStyle
	if s.input.Focused() {
		box = focusedInputStyle
	}
	return label + " " + box.Render(s.input.View())
}

func allDigits(runes []rune) bool {
	for _, r := range runes {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(runes) > 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
