package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Pause      key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	FontUp     key.Binding
	FontDown   key.Binding
	Faster     key.Binding
	Slower     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Pause:      key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "pause / resume scrolling")),
		ScrollUp:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "scroll down")),
		FontUp:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "increase font size")),
		FontDown:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "decrease font size")),
		Faster:     key.NewBinding(key.WithKeys("*", "]"), key.WithHelp("*", "increase scroll speed")),
		Slower:     key.NewBinding(key.WithKeys("/", "["), key.WithHelp("/", "decrease scroll speed")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:       key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.FontUp, k.FontDown, k.Faster, k.Slower, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ScrollUp, k.ScrollDown},
		{k.FontUp, k.FontDown},
		{k.Faster, k.Slower},
		{k.Pause, k.Help, k.Quit},
	}
}

const introTitle = "PASTE CHANNEL"

// introLines lists the rows shown before the first entry arrives.
func introLines(keys keyMap) []string {
	lines := []string{
		introTitle,
		"Recent public pastes, scrolling past like a news ticker.",
		"",
	}
	for _, group := range keys.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(h.Key), capitalize(h.Desc)))
		}
	}
	lines = append(lines,
		"CLICK: Open clicked paste in default web browser",
		"RIGHT CLICK: Copy link of clicked paste",
	)
	return lines
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
