package snapshot

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fentz26/ganttline/internal/models"
)

// FormatPython writes tasks as the `tasks = [...]` list literal read by older
// render scenes. Each entry is
// [id, depth, name, status, assignee, start, end, percent, duration, predecessors]
// with None for missing dates and percent. The format is write-only.
func FormatPython(w io.Writer, tasks []models.TaskRecord) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("tasks = [\n")
	for _, t := range tasks {
		fields := []string{
			pyID(t.ID),
			strconv.Itoa(t.Depth),
			pyString(t.Name),
			pyString(t.Status),
			pyString(t.Assignee),
			pyOptional(t.Start),
			pyOptional(t.End),
			pyPercent(t.PercentComplete),
			pyString(t.Duration),
			pyString(strings.Join(t.Predecessors, ",")),
		}
		fmt.Fprintf(bw, "    [%s],\n", strings.Join(fields, ", "))
	}
	bw.WriteString("]\n")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write python tasks: %w", err)
	}
	return nil
}

// WritePythonFile writes FormatPython output to path.
func WritePythonFile(path string, tasks []models.TaskRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create python tasks file: %w", err)
	}
	if err := FormatPython(f, tasks); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// pyID keeps integer ids bare so scenes can compare them numerically.
func pyID(id string) string {
	if _, err := strconv.Atoi(id); err == nil {
		return id
	}
	return pyString(id)
}

func pyOptional(s string) string {
	if s == "" {
		return "None"
	}
	return pyString(s)
}

func pyPercent(p *int) string {
	if p == nil {
		return "None"
	}
	return strconv.Itoa(*p)
}

var pyEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

func pyString(s string) string {
	return "'" + pyEscaper.Replace(s) + "'"
}
