package loader

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fentz26/ganttline/internal/models"
)

// Status labels derived from percent complete in MS Project exports.
const (
	StatusComplete   = "Completo"
	StatusInProgress = "En progreso"
	StatusNotStarted = "No se ha iniciado"
)

type msProject struct {
	Tasks       []msTask       `xml:"Tasks>Task"`
	Resources   []msResource   `xml:"Resources>Resource"`
	Assignments []msAssignment `xml:"Assignments>Assignment"`
}

type msTask struct {
	UID             string   `xml:"UID"`
	ID              string   `xml:"ID"`
	Name            string   `xml:"Name"`
	OutlineLevel    string   `xml:"OutlineLevel"`
	Start           string   `xml:"Start"`
	Finish          string   `xml:"Finish"`
	Duration        string   `xml:"Duration"`
	PercentComplete string   `xml:"PercentComplete"`
	Predecessors    []string `xml:"PredecessorLink>PredecessorUID"`
}

type msResource struct {
	UID  string `xml:"UID"`
	Name string `xml:"Name"`
}

type msAssignment struct {
	TaskUID     string `xml:"TaskUID"`
	ResourceUID string `xml:"ResourceUID"`
}

// LoadMSProject reads an MS Project XML export.
func LoadMSProject(path string) ([]models.TaskRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open project xml: %w", err)
	}
	defer f.Close()
	return ReadMSProject(f)
}

// ReadMSProject decodes an MS Project XML document. Task ID 0 (the project
// summary row) is skipped and depth is OutlineLevel minus one. Predecessor
// UIDs are translated to task IDs when the UID is known.
func ReadMSProject(r io.Reader) ([]models.TaskRecord, error) {
	var doc msProject
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode project xml: %w", err)
	}

	resources := make(map[string]string, len(doc.Resources))
	for _, res := range doc.Resources {
		if res.UID != "" && res.Name != "" {
			resources[res.UID] = res.Name
		}
	}
	assigned := make(map[string][]string)
	for _, a := range doc.Assignments {
		if name, ok := resources[a.ResourceUID]; ok && a.TaskUID != "" {
			assigned[a.TaskUID] = append(assigned[a.TaskUID], name)
		}
	}
	uidToID := make(map[string]string, len(doc.Tasks))
	for _, t := range doc.Tasks {
		uidToID[t.UID] = t.ID
	}

	var records []models.TaskRecord
	for _, t := range doc.Tasks {
		if t.ID == "0" {
			continue
		}

		depth := 0
		if lvl, err := strconv.Atoi(strings.TrimSpace(t.OutlineLevel)); err == nil && lvl > 0 {
			depth = lvl - 1
		}

		pct := 0
		if n, err := strconv.Atoi(strings.TrimSpace(t.PercentComplete)); err == nil {
			pct = n
		}
		status := StatusNotStarted
		switch {
		case pct >= 100:
			status = StatusComplete
		case pct > 0:
			status = StatusInProgress
		}

		var preds []string
		for _, uid := range t.Predecessors {
			if id, ok := uidToID[uid]; ok {
				preds = append(preds, id)
			} else if uid != "" {
				preds = append(preds, uid)
			}
		}

		records = append(records, models.TaskRecord{
			ID:              t.ID,
			Depth:           depth,
			Name:            strings.TrimSpace(t.Name),
			Status:          status,
			Assignee:        strings.Join(assigned[t.UID], ", "),
			Start:           isoDate(t.Start),
			End:             isoDate(t.Finish),
			PercentComplete: models.Percent(pct),
			Duration:        ParseISODuration(t.Duration),
			Predecessors:    preds,
		})
	}
	return records, nil
}

// isoDate turns 2026-01-06T08:00:00 into 06/01/26.
func isoDate(text string) string {
	if text == "" {
		return ""
	}
	date, _, _ := strings.Cut(text, "T")
	return NormalizeDate(date)
}
