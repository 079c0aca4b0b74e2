// Package models defines the core domain types for ganttline.
package models

import (
	"fmt"
	"time"
)

// DateLayout is the day/month/two-digit-year layout every loader normalises dates to.
const DateLayout = "02/01/06"

// TaskRecord is one row of a project plan.
type TaskRecord struct {
	ID              string   `json:"id"`
	Depth           int      `json:"depth"`
	Name            string   `json:"name"`
	Status          string   `json:"status,omitempty"`
	Assignee        string   `json:"assignee,omitempty"`
	Start           string   `json:"start,omitempty"`
	End             string   `json:"end,omitempty"`
	PercentComplete *int     `json:"percent_complete,omitempty"`
	Duration        string   `json:"duration,omitempty"`
	Predecessors    []string `json:"predecessors,omitempty"`
}

// HasDates reports whether both the start and end dates are set.
func (t TaskRecord) HasDates() bool {
	return t.Start != "" && t.End != ""
}

// Span parses Start and End. ok is false when either is missing or unparseable.
func (t TaskRecord) Span() (start, end time.Time, ok bool) {
	if !t.HasDates() {
		return time.Time{}, time.Time{}, false
	}
	start, err := time.Parse(DateLayout, t.Start)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err = time.Parse(DateLayout, t.End)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// PercentText renders PercentComplete as "NN%", or "" when unset.
func (t TaskRecord) PercentText() string {
	if t.PercentComplete == nil {
		return ""
	}
	return fmt.Sprintf("%d%%", *t.PercentComplete)
}

// Percent returns a pointer to p, for populating PercentComplete.
func Percent(p int) *int {
	return &p
}

// Snapshot is a filtered task list handed from the filter stage to a renderer.
type Snapshot struct {
	ID          string       `json:"id,omitempty"`
	Version     int          `json:"version"`
	GeneratedAt time.Time    `json:"generated_at"`
	Source      string       `json:"source,omitempty"`
	Pipeline    string       `json:"pipeline,omitempty"`
	Tasks       []TaskRecord `json:"tasks"`
}

// SnapshotSummary is a snapshot without its task list, for history listings.
type SnapshotSummary struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Pipeline  string    `json:"pipeline"`
	TaskCount int       `json:"task_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Decision is an audit record of one filter run.
type Decision struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	InputsHash string    `json:"inputs_hash"`
	Outcome    string    `json:"outcome"`
	SnapshotID string    `json:"snapshot_id,omitempty"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
