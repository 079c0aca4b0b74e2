package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/ganttline/internal/hierarchy"
	"github.com/fentz26/ganttline/internal/models"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// WriteSteps prints one line per pipeline op: "stage 1  depth=1  -> 12 tasks".
func WriteSteps(w io.Writer, steps []hierarchy.StepResult) {
	for _, st := range steps {
		fmt.Fprintf(w, "%s %s -> %d tasks\n",
			dimStyle.Render(fmt.Sprintf("stage %d", st.Stage+1)), st.Op, st.Count)
	}
}

// WriteWarnings prints warnings to w.
func WriteWarnings(w io.Writer, warnings []string) {
	for _, msg := range warnings {
		fmt.Fprintln(w, warnStyle.Render("warning: "+msg))
	}
}

// WriteDebug lists depths present and every task as id | depth | name.
func WriteDebug(w io.Writer, tasks []models.TaskRecord) error {
	seen := make(map[int]bool)
	var depths []int
	for _, t := range tasks {
		if !seen[t.Depth] {
			seen[t.Depth] = true
			depths = append(depths, t.Depth)
		}
	}
	sort.Ints(depths)
	labels := make([]string, len(depths))
	for i, d := range depths {
		labels[i] = strconv.Itoa(d)
	}
	fmt.Fprintln(w, headingStyle.Render("Depths present: ")+"["+strings.Join(labels, ", ")+"]")

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDEPTH\tNAME\tDATES\tPCT")
	for _, t := range tasks {
		dates := ""
		if t.HasDates() {
			dates = t.Start + " - " + t.End
		}
		fmt.Fprintf(tw, "%s\t%d\t%s%s\t%s\t%s\n",
			t.ID, t.Depth, strings.Repeat("  ", t.Depth), t.Name, dates, t.PercentText())
	}
	return tw.Flush()
}

// WriteStats prints a summary produced by Compute.
func WriteStats(w io.Writer, s Stats) error {
	fmt.Fprintln(w, headingStyle.Render("Plan summary"))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Tasks\t%d\n", s.Total)
	fmt.Fprintf(tw, "With dates\t%d\n", s.Dated)
	for _, d := range s.Depths() {
		fmt.Fprintf(tw, "Depth %d\t%d\n", d, s.ByDepth[d])
	}
	if s.Dated > 0 {
		fmt.Fprintf(tw, "Span\t%s - %s\n", s.Start.Format(models.DateLayout), s.End.Format(models.DateLayout))
		fmt.Fprintf(tw, "Calendar days\t%d\n", s.CalendarDays)
		fmt.Fprintf(tw, "Business days\t%d\n", s.BusinessDays)
		fmt.Fprintf(tw, "Holidays\t%d%s\n", len(s.Holidays), holidayList(s))
		fmt.Fprintf(tw, "Elapsed at %s\t%dd (%d%%)\n", s.Today.Format("02/01"), s.ElapsedDays, s.ElapsedPercent)
		if s.AvgReal != nil {
			fmt.Fprintf(tw, "Real progress\t%d%%\n", *s.AvgReal)
		}
		if s.AvgPlanned != nil {
			fmt.Fprintf(tw, "Planned progress\t%d%%\n", *s.AvgPlanned)
		}
	}
	return tw.Flush()
}

func holidayList(s Stats) string {
	if len(s.Holidays) == 0 {
		return ""
	}
	days := make([]string, len(s.Holidays))
	for i, h := range s.Holidays {
		days[i] = h.Format("02/01")
	}
	return " (" + strings.Join(days, ", ") + ")"
}
