// Package report summarizes filtered plans for the terminal.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/fentz26/ganttline/internal/calendar"
	"github.com/fentz26/ganttline/internal/models"
)

// Stats summarizes a task list.
type Stats struct {
	Total   int
	Dated   int
	ByDepth map[int]int

	// The fields below are only set when at least one task has dates.
	Start          time.Time
	End            time.Time
	Today          time.Time
	CalendarDays   int
	BusinessDays   int
	Holidays       []time.Time
	ElapsedDays    int
	ElapsedPercent int
	// AvgReal is the mean percent complete of dated tasks that report one.
	AvgReal *int
	// AvgPlanned is the mean share of each dated task's span elapsed at Today.
	AvgPlanned *int
}

// Depths returns the depths present, ascending.
func (s Stats) Depths() []int {
	out := make([]int, 0, len(s.ByDepth))
	for d := range s.ByDepth {
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

// Compute builds Stats for tasks. today is clamped into the plan's span.
func Compute(tasks []models.TaskRecord, cal *calendar.Calendar, today time.Time) Stats {
	s := Stats{Total: len(tasks), ByDepth: make(map[int]int)}

	type span struct{ start, end time.Time }
	var dated []span
	var real []float64
	for _, t := range tasks {
		s.ByDepth[t.Depth]++
		start, end, ok := t.Span()
		if !ok {
			continue
		}
		dated = append(dated, span{start, end})
		if s.Start.IsZero() || start.Before(s.Start) {
			s.Start = start
		}
		if end.After(s.End) {
			s.End = end
		}
		if t.PercentComplete != nil {
			real = append(real, float64(*t.PercentComplete))
		}
	}
	s.Dated = len(dated)
	if s.Dated == 0 {
		return s
	}

	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case today.Before(s.Start):
		today = s.Start
	case today.After(s.End):
		today = s.End
	}
	s.Today = today

	s.CalendarDays = int(s.End.Sub(s.Start).Hours()/24) + 1
	if cal != nil {
		s.BusinessDays = cal.BusinessDays(s.Start, s.End)
		s.Holidays = cal.HolidaysIn(s.Start, s.End)
		s.ElapsedDays = cal.BusinessDays(s.Start, today)
		if s.BusinessDays > 0 {
			s.ElapsedPercent = int(math.Round(float64(s.ElapsedDays) / float64(s.BusinessDays) * 100))
		}
	}

	if len(real) > 0 {
		avg := mean(real)
		s.AvgReal = &avg
	}
	planned := make([]float64, len(dated))
	for i, d := range dated {
		planned[i] = float64(calendar.PlannedPercent(d.start, d.end, today))
	}
	avg := mean(planned)
	s.AvgPlanned = &avg
	return s
}

func mean(values []float64) int {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return int(math.Round(sum / float64(len(values))))
}
