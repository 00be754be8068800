package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/autoclick/internal/model"
	"github.com/verte-zerg/autoclick/internal/report"
)

const (
	defaultHistoryHeight = 10
	maxRunLines          = 5
)

var tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))

func newHistoryTable() table.Model {
	columns := []table.Column{
		{Title: "序号", Width: 6},
		{Title: "点击时间", Width: 26},
		{Title: "点击位置", Width: 14},
	}
	return table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(defaultHistoryHeight),
	)
}

func historyRow(ev model.ClickEvent) table.Row {
	return table.Row{
		strconv.Itoa(ev.Sequence),
		report.FormatTimestamp(ev.Timestamp),
		ev.Position.String(),
	}
}

func (m *Model) resizeHistory() {
	if m.height <= 0 {
		return
	}
	// Tabs, run table, and footer take the rest of the screen.
	height := m.height - 3 - (maxRunLines + 2) - (logPaneLines + 1)
	if height < 3 {
		height = 3
	}
	m.historyTable.SetHeight(height)
}

func (m *Model) renderHistory() string {
	var sections []string
	if len(m.runs) == 0 {
		sections = append(sections, "暂无点击记录！")
		return strings.Join(sections, "\n")
	}
	runLines := report.RunTable(m.runs)
	if len(runLines) > maxRunLines+1 {
		runLines = append(runLines[:1], runLines[len(runLines)-maxRunLines:]...)
	}
	for i, line := range runLines {
		if m.width > 0 {
			runLines[i] = truncateLine(line, m.width)
		}
	}
	sections = append(sections, strings.Join(runLines, "\n"), "")
	if len(m.historyRows) == 0 {
		sections = append(sections, "暂无点击记录！")
	} else {
		sections = append(sections, tableMutedStyle.Render(m.historyTable.View()))
	}
	sections = append(sections, footerStyle.Render("↑/↓: 滚动  ←/→: 返回点击器"))
	return strings.Join(sections, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
