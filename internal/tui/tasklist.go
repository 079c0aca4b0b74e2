package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/ganttline/internal/models"
)

var (
	listTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	statusDone     = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // Green
	statusProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // Cyan
	statusIdle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // Yellow
)

// TaskItem implements list.Item for one plan row.
type TaskItem struct {
	Record   models.TaskRecord
	Pos      int
	Children int
	// Indent prefixes the title with the record depth, for flat filter results.
	Indent bool
}

func (i TaskItem) FilterValue() string { return i.Record.ID + " " + i.Record.Name }

func (i TaskItem) Title() string {
	title := i.Record.Name
	if i.Indent {
		title = strings.Repeat("  ", i.Record.Depth) + title
	}
	if i.Children > 0 {
		title += " ▸"
	}
	return title
}

func (i TaskItem) Description() string {
	parts := []string{"#" + i.Record.ID, fmt.Sprintf("depth %d", i.Record.Depth)}
	if i.Record.HasDates() {
		parts = append(parts, i.Record.Start+" - "+i.Record.End)
	}
	if pct := i.Record.PercentText(); pct != "" {
		parts = append(parts, formatProgress(i.Record.PercentComplete, pct))
	}
	if i.Children > 0 {
		parts = append(parts, fmt.Sprintf("%d children", i.Children))
	}
	return strings.Join(parts, " • ")
}

func formatProgress(p *int, text string) string {
	switch {
	case *p >= 100:
		return statusDone.Render(text)
	case *p > 0:
		return statusProgress.Render(text)
	default:
		return statusIdle.Render(text)
	}
}

func newTaskList(width, height int) list.Model {
	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, width, height)
	l.Title = "Plan"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = listTitleStyle
	l.DisableQuitKeybindings()
	return l
}
