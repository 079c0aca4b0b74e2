// Package tui provides the interactive plan browser for ganttline.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/ganttline/internal/hierarchy"
	"github.com/fentz26/ganttline/internal/models"
)

var (
	// Colors
	primaryColor = lipgloss.Color("#7C3AED")
	successColor = lipgloss.Color("#10B981")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
	fgColor      = lipgloss.Color("#F9FAFB")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(fgColor).
			Padding(0, 1)

	breadcrumbStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// Modes
const (
	modeTree   = "tree"
	modeFilter = "filter"
	modeDetail = "detail"
)

// ExportFunc writes the listed tasks somewhere and returns a description of
// where.
type ExportFunc func(tasks []models.TaskRecord, pipeline string) (string, error)

// App is the main TUI application model.
type App struct {
	source   string
	records  []models.TaskRecord
	index    *hierarchy.Index
	list     list.Model
	cmdbar   *CmdBarModel
	viewport viewport.Model
	mode     string
	prevMode string
	// trail holds the positions drilled into; empty means the top level.
	trail    []int
	filtered []models.TaskRecord
	pipeline string
	message  string
	width    int
	height   int
	export   ExportFunc
}

// New creates a browser over records. export may be nil.
func New(source string, records []models.TaskRecord, export ExportFunc) *App {
	a := &App{
		source:   source,
		records:  records,
		index:    hierarchy.BuildIndex(records),
		list:     newTaskList(80, 20),
		cmdbar:   NewCmdBarModel(),
		viewport: viewport.New(80, 20),
		mode:     modeTree,
		export:   export,
	}
	a.showLevel()
	return a
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.list.SetSize(msg.Width, msg.Height-4)
		a.viewport.Width = msg.Width
		a.viewport.Height = msg.Height - 4
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.cmdbar.Focused() {
			return a, a.updateCmdBar(msg)
		}
		if a.list.FilterState() == list.Filtering {
			break
		}
		if a.mode == modeDetail {
			return a, a.updateDetail(msg)
		}
		if cmd, handled := a.handleKey(msg); handled {
			return a, cmd
		}
	}

	var cmd tea.Cmd
	a.list, cmd = a.list.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "q":
		return tea.Quit, true

	case ":":
		a.message = ""
		return a.cmdbar.Focus(), true

	case "enter", "right", "l":
		item, ok := a.selected()
		if !ok {
			return nil, true
		}
		if a.mode == modeTree && item.Children > 0 {
			a.trail = append(a.trail, item.Pos)
			a.showLevel()
			return nil, true
		}
		a.openDetail(item.Pos)
		return nil, true

	case "d", " ":
		if item, ok := a.selected(); ok {
			a.openDetail(item.Pos)
		}
		return nil, true

	case "backspace", "left", "h", "esc":
		if a.list.FilterState() == list.FilterApplied {
			return nil, false
		}
		a.back()
		return nil, true

	case "w":
		a.exportVisible()
		return nil, true
	}
	return nil, false
}

func (a *App) updateCmdBar(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		a.cmdbar.Blur()
		return nil
	case "enter":
		a.runPipeline(a.cmdbar.Submit())
		return nil
	}
	return a.cmdbar.Update(msg)
}

func (a *App) updateDetail(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "backspace", "left", "h", "q":
		a.mode = a.prevMode
		return nil
	}
	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return cmd
}

func (a *App) selected() (TaskItem, bool) {
	item, ok := a.list.SelectedItem().(TaskItem)
	return item, ok
}

// showLevel lists the children of the last trail entry, or the top level.
func (a *App) showLevel() {
	positions := a.index.RootPositions()
	title := "Plan"
	if n := len(a.trail); n > 0 {
		parent := a.trail[n-1]
		positions = a.index.ChildrenAt(parent)
		title = a.index.Record(parent).Name
	}
	items := make([]list.Item, len(positions))
	for i, p := range positions {
		items[i] = TaskItem{Record: a.index.Record(p), Pos: p, Children: len(a.index.ChildrenAt(p))}
	}
	a.list.ResetFilter()
	a.list.SetItems(items)
	a.list.Select(0)
	a.list.Title = title
	a.mode = modeTree
}

// back leaves the filter view, or climbs one level and reselects the parent.
func (a *App) back() {
	if a.mode == modeFilter {
		a.filtered = nil
		a.pipeline = ""
		a.showLevel()
		return
	}
	n := len(a.trail)
	if n == 0 {
		return
	}
	left := a.trail[n-1]
	a.trail = a.trail[:n-1]
	a.showLevel()
	for i, it := range a.list.Items() {
		if it.(TaskItem).Pos == left {
			a.list.Select(i)
			break
		}
	}
}

func (a *App) runPipeline(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	p, err := hierarchy.ParsePipeline(strings.Fields(text))
	if err != nil {
		a.message = "Error: " + err.Error()
		return
	}
	res, err := hierarchy.Apply(a.records, p, hierarchy.Options{})
	if err != nil {
		a.message = "Error: " + err.Error()
		return
	}

	a.filtered = res.Tasks
	a.pipeline = p.String()
	positions := make(map[string]int, len(a.records))
	for i := len(a.records) - 1; i >= 0; i-- {
		positions[a.records[i].ID] = i
	}
	items := make([]list.Item, len(res.Tasks))
	for i, r := range res.Tasks {
		pos := positions[r.ID]
		items[i] = TaskItem{Record: r, Pos: pos, Indent: true}
	}
	a.list.ResetFilter()
	a.list.SetItems(items)
	a.list.Select(0)
	a.list.Title = a.pipeline
	a.mode = modeFilter

	if w := res.Warnings(); len(w) > 0 {
		a.message = "Warning: " + strings.Join(w, "; ")
	} else {
		a.message = fmt.Sprintf("✓ %d tasks", len(res.Tasks))
	}
}

func (a *App) openDetail(pos int) {
	a.prevMode = a.mode
	a.mode = modeDetail
	a.viewport.SetContent(renderDetail(a.index, pos))
	a.viewport.GotoTop()
}

func (a *App) visible() []models.TaskRecord {
	items := a.list.Items()
	out := make([]models.TaskRecord, len(items))
	for i, it := range items {
		out[i] = it.(TaskItem).Record
	}
	return out
}

func (a *App) exportVisible() {
	if a.export == nil {
		a.message = "Error: export is not configured"
		return
	}
	tasks := a.visible()
	if a.mode == modeTree && len(a.trail) > 0 {
		id := a.index.Record(a.trail[len(a.trail)-1]).ID
		tasks = hierarchy.FilterByID(a.records, id, intPtr(1))
	}
	where, err := a.export(tasks, a.pipeline)
	if err != nil {
		a.message = "Error: " + err.Error()
		return
	}
	a.message = fmt.Sprintf("✓ Wrote %d tasks to %s", len(tasks), where)
}

func intPtr(n int) *int { return &n }

// View implements tea.Model
func (a *App) View() string {
	var b strings.Builder

	header := titleStyle.Render("ganttline") + "  " + breadcrumbStyle.Render(a.breadcrumb())
	b.WriteString(header + "\n")

	if a.mode == modeDetail {
		b.WriteString(a.viewport.View())
	} else {
		b.WriteString(a.list.View())
	}
	b.WriteString("\n")

	if a.cmdbar.Focused() {
		b.WriteString(a.cmdbar.View(a.width))
	} else if a.message != "" {
		msgStyle := lipgloss.NewStyle().Foreground(successColor)
		if strings.HasPrefix(a.message, "Error") || strings.HasPrefix(a.message, "Warning") {
			msgStyle = lipgloss.NewStyle().Foreground(errorColor)
		}
		b.WriteString(msgStyle.Render(a.message))
	}
	b.WriteString("\n")

	var status string
	switch a.mode {
	case modeTree:
		status = fmt.Sprintf(" %s | %d tasks | enter:open  ←:up  d:detail  ::filter  /:search  w:write  q:quit", a.source, len(a.records))
	case modeFilter:
		status = fmt.Sprintf(" %s | %d of %d tasks | d:detail  esc:tree  w:write  q:quit", a.pipeline, len(a.filtered), len(a.records))
	default:
		status = " ↑↓:scroll | esc:back"
	}
	b.WriteString(statusBarStyle.Width(a.width).Render(status))
	return b.String()
}

func (a *App) breadcrumb() string {
	if a.mode == modeFilter || (a.mode == modeDetail && a.prevMode == modeFilter) {
		return "filter: " + a.pipeline
	}
	names := []string{"/"}
	for _, p := range a.trail {
		names = append(names, a.index.Record(p).Name)
	}
	return strings.Join(names, " › ")
}
