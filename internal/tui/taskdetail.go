package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/ganttline/internal/hierarchy"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("240"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(14)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginTop(1)
)

// renderDetail describes the record at pos with its ancestry and children.
func renderDetail(ix *hierarchy.Index, pos int) string {
	r := ix.Record(pos)
	var b strings.Builder

	b.WriteString(headerStyle.Render(r.Name) + "\n")
	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	field("ID", r.ID)
	field("Status", r.Status)
	field("Assignee", r.Assignee)
	field("Start", r.Start)
	field("End", r.End)
	field("Progress", r.PercentText())
	field("Duration", r.Duration)
	field("Predecessors", strings.Join(r.Predecessors, ", "))

	if anc := ix.AncestorPositions(pos); len(anc) > 0 {
		b.WriteString(sectionStyle.Render("Path") + "\n")
		names := make([]string, len(anc))
		for i, p := range anc {
			names[i] = ix.Record(p).Name
		}
		b.WriteString("  " + strings.Join(names, " › ") + "\n")
	}

	if kids := ix.ChildrenAt(pos); len(kids) > 0 {
		b.WriteString(sectionStyle.Render("Children") + "\n")
		for _, p := range kids {
			c := ix.Record(p)
			b.WriteString("  #" + c.ID + " " + c.Name + "\n")
		}
	}
	return b.String()
}
