package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
)

var (
	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))
	pausedStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	runningStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#a3be8c")).Padding(0, 1)
)

func (m *model) View() string {
	lines := m.renderRows()
	lines = append(lines, m.statusBarView())
	if m.helpVisible {
		lines = append(lines, m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return strings.Join(lines, "\n")
}

// renderRows places every visible row on the terminal line its Y maps to.
// Rows that share a line overwrite each other; the later one wins.
func (m *model) renderRows() []string {
	lines := make([]string, m.layout.viewLines)
	width := m.layout.windowWidth
	for _, row := range m.session.buffer.Rows() {
		if row.Destroyed || row.Y < 0 {
			continue
		}
		idx := lineAt(row.Y)
		if idx >= len(lines) {
			continue
		}
		text := row.Text
		if width > 0 {
			text = truncate.String(text, uint(width))
		}
		lines[idx] = m.styleFor(row.Color).Render(text)
	}
	return lines
}

func (m *model) styleFor(color string) lipgloss.Style {
	if style, ok := m.styles[color]; ok {
		return style
	}
	style := lipgloss.NewStyle()
	if color != "" {
		style = style.Foreground(lipgloss.Color(color))
	}
	m.styles[color] = style
	return style
}

func (m *model) statusBarView() string {
	s := m.session
	state := runningStyle.Render("RUNNING")
	if s.paused {
		state = pausedStyle.Render("PAUSED")
	}

	stats := []string{
		fmt.Sprintf("speed %d", s.scrollRate),
		fmt.Sprintf("font %d", s.fontSize),
		fmt.Sprintf("queued %d", s.queued()),
		fmt.Sprintf("shown %d", m.entriesShown),
		fmt.Sprintf("rows %d", s.buffer.Len()),
		fmt.Sprintf("fetched %s", humanize.Bytes(m.bytesFetched)),
	}
	if n := m.jobs.Running(); n > 0 {
		stats = append(stats, fmt.Sprintf("jobs %d", n))
	}
	if m.fetch != fetchIdle {
		label := m.fetchLabel + "…"
		if m.fetch != fetchRetrying {
			label = m.spinner.View() + " " + label
		}
		stats = append(stats, label)
	}
	if m.flash != "" {
		stats = append(stats, m.flash)
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Top, state, statusBarStyle.Render(" "+strings.Join(stats, "  •  ")+" "))
	if width := m.layout.windowWidth; width > 0 {
		bar = truncate.String(bar, uint(width))
	}
	return bar
}
