package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Commit key.Binding
	Skip   key.Binding
	Back   key.Binding
	Reset  key.Binding
	Speak  key.Binding
	Level1 key.Binding
	Level2 key.Binding
	Level3 key.Binding
	Save   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save cell"),
		),
		Skip: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "skip"),
		),
		Back: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "back"),
		),
		Reset: key.NewBinding(
			key.WithKeys("esc", "ctrl+r"),
			key.WithHelp("esc", "reset cell"),
		),
		Speak: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "run as voice command"),
		),
		Level1: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "next facility"),
		),
		Level2: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "next sub-unit"),
		),
		Level3: key.NewBinding(
			key.WithKeys("f3"),
			key.WithHelp("f3", "next crop"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save as new workbook"),
		),
		Help: key.NewBinding(
			key.WithKeys("f10"),
			key.WithHelp("f10", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Commit, k.Skip, k.Back, k.Save, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Commit, k.Skip, k.Back, k.Reset},
		{k.Speak, k.Level1, k.Level2, k.Level3},
		{k.Save, k.Help, k.Quit},
	}
}
