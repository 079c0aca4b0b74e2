// Package calendar counts working days over a plan's date span.
package calendar

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// HolidayLayout is the layout of configured holiday dates.
const HolidayLayout = "2006-01-02"

// Calendar is a Monday to Friday working week minus a set of holidays.
type Calendar struct {
	holidays map[time.Time]bool
}

// New builds a Calendar from YYYY-MM-DD holiday strings.
func New(holidays []string) (*Calendar, error) {
	c := &Calendar{holidays: make(map[time.Time]bool, len(holidays))}
	for _, h := range holidays {
		d, err := time.Parse(HolidayLayout, h)
		if err != nil {
			return nil, fmt.Errorf("parse holiday %q: %w", h, err)
		}
		c.holidays[d] = true
	}
	return c, nil
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func weekday(d time.Time) bool {
	return d.Weekday() != time.Saturday && d.Weekday() != time.Sunday
}

// IsHoliday reports whether t falls on a configured holiday.
func (c *Calendar) IsHoliday(t time.Time) bool {
	return c.holidays[day(t)]
}

// IsBusinessDay reports whether t is a weekday that is not a holiday.
func (c *Calendar) IsBusinessDay(t time.Time) bool {
	d := day(t)
	return weekday(d) && !c.holidays[d]
}

// BusinessDays counts business days in [start, end]. It is 0 when end is
// before start.
func (c *Calendar) BusinessDays(start, end time.Time) int {
	s, e := day(start), day(end)
	n := 0
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		if c.IsBusinessDay(d) {
			n++
		}
	}
	return n
}

// HolidaysIn returns the holidays in (start, end] that fall on weekdays,
// in date order.
func (c *Calendar) HolidaysIn(start, end time.Time) []time.Time {
	s, e := day(start), day(end)
	var out []time.Time
	for h := range c.holidays {
		if h.After(s) && !h.After(e) && weekday(h) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// PlannedPercent is the share of [start, end] elapsed at today, by calendar
// days, rounded to a whole percent.
func PlannedPercent(start, end, today time.Time) int {
	s, e, t := day(start), day(end), day(today)
	switch {
	case !t.After(s):
		return 0
	case !t.Before(e):
		return 100
	}
	total := e.Sub(s).Hours() / 24
	if total < 1 {
		total = 1
	}
	return int(math.Round(t.Sub(s).Hours() / 24 / total * 100))
}
