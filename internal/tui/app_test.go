package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/ganttline/internal/models"
)

func plan() []models.TaskRecord {
	return []models.TaskRecord{
		{ID: "1", Depth: 0, Name: "Project"},
		{ID: "2", Depth: 1, Name: "DEV"},
		{ID: "3", Depth: 2, Name: "Provision"},
		{ID: "4", Depth: 2, Name: "Install"},
		{ID: "5", Depth: 1, Name: "PROD"},
		{ID: "6", Depth: 0, Name: "Support"},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(a *App, keys ...string) {
	for _, k := range keys {
		a.Update(key(k))
	}
}

func visibleIDs(a *App) []string {
	var out []string
	for _, r := range a.visible() {
		out = append(out, r.ID)
	}
	return out
}

func TestApp_DrillDownAndBack(t *testing.T) {
	a := New("plan.xlsx", plan(), nil)
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	assert.Equal(t, []string{"1", "6"}, visibleIDs(a))

	send(a, "enter")
	assert.Equal(t, []string{"2", "5"}, visibleIDs(a))

	send(a, "enter")
	assert.Equal(t, []string{"3", "4"}, visibleIDs(a))
	assert.Contains(t, a.View(), "Project › DEV")

	// Leaf opens the detail view.
	send(a, "down", "enter")
	assert.Equal(t, modeDetail, a.mode)
	assert.Contains(t, a.View(), "Install")

	send(a, "esc", "backspace")
	assert.Equal(t, modeTree, a.mode)
	assert.Equal(t, []string{"2", "5"}, visibleIDs(a))
	item, ok := a.selected()
	require.True(t, ok)
	assert.Equal(t, "2", item.Record.ID)

	send(a, "backspace", "backspace")
	assert.Equal(t, []string{"1", "6"}, visibleIDs(a))
}

func TestApp_PipelineFromCommandBar(t *testing.T) {
	a := New("plan.xlsx", plan(), nil)
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	send(a, ":")
	require.True(t, a.cmdbar.Focused())
	for _, r := range "depth=2" {
		a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	send(a, "enter")

	assert.False(t, a.cmdbar.Focused())
	assert.Equal(t, modeFilter, a.mode)
	assert.Equal(t, []string{"1", "2", "3", "4"}, visibleIDs(a))
	assert.Contains(t, a.message, "4 tasks")

	send(a, "esc")
	assert.Equal(t, modeTree, a.mode)
	assert.Equal(t, []string{"1", "6"}, visibleIDs(a))
}

func TestApp_PipelineErrors(t *testing.T) {
	a := New("plan.xlsx", plan(), nil)

	a.runPipeline("bogus")
	assert.Contains(t, a.message, "Error")
	assert.Equal(t, modeTree, a.mode)

	a.runPipeline("id=99")
	assert.Contains(t, a.message, "Warning")
	assert.Empty(t, a.visible())
}

func TestApp_Export(t *testing.T) {
	var got []models.TaskRecord
	a := New("plan.xlsx", plan(), func(tasks []models.TaskRecord, pipeline string) (string, error) {
		got = tasks
		return "tasks.json", nil
	})

	send(a, "enter", "w")
	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"1", "2", "5"}, ids)
	assert.Contains(t, a.message, "tasks.json")

	a.export = func([]models.TaskRecord, string) (string, error) { return "", errors.New("disk full") }
	send(a, "w")
	assert.Contains(t, a.message, "disk full")
}

func TestTaskItem(t *testing.T) {
	item := TaskItem{
		Record:   models.TaskRecord{ID: "7", Depth: 2, Name: "Masters", Start: "05/01/26", End: "09/01/26", PercentComplete: models.Percent(40)},
		Children: 3,
		Indent:   true,
	}
	assert.Equal(t, "    Masters ▸", item.Title())
	assert.Contains(t, item.Description(), "#7")
	assert.Contains(t, item.Description(), "3 children")
	assert.Equal(t, "7 Masters", item.FilterValue())
}
