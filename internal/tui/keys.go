package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Start    key.Binding
	Stop     key.Binding
	Quit     key.Binding
	Next     key.Binding
	Prev     key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Press    key.Binding
	TabLeft  key.Binding
	TabRight key.Binding
}

// keys are bound once and never rebound.
var keys = keyMap{
	Start:    key.NewBinding(key.WithKeys("f9"), key.WithHelp("F9", "开始点击")),
	Stop:     key.NewBinding(key.WithKeys("f10", "esc"), key.WithHelp("F10/Esc", "停止点击")),
	Quit:     key.NewBinding(key.WithKeys("ctrl+q", "ctrl+c"), key.WithHelp("Ctrl+Q", "退出程序")),
	Next:     key.NewBinding(key.WithKeys("tab")),
	Prev:     key.NewBinding(key.WithKeys("shift+tab")),
	Up:       key.NewBinding(key.WithKeys("up")),
	Down:     key.NewBinding(key.WithKeys("down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup")),
	PageDown: key.NewBinding(key.WithKeys("pgdown")),
	Press:    key.NewBinding(key.WithKeys("enter", " ")),
	TabLeft:  key.NewBinding(key.WithKeys("left")),
	TabRight: key.NewBinding(key.WithKeys("right")),
}

func shortcutHelp() string {
	lines := []string{"快捷键说明："}
	for _, b := range []key.Binding{keys.Start, keys.Stop, keys.Quit} {
		h := b.Help()
		lines = append(lines, h.Key+": "+h.Desc)
	}
	return joinLines(lines)
}
