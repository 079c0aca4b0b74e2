package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fentz26/ganttline/internal/models"
)

// CSVHeader is the canonical column set written by WriteCSV.
var CSVHeader = []string{"ID", "Nivel", "Nombre de Tarea", "Estado", "Asignado", "Inicio", "Fin", "Avance", "Duración", "Predecesores"}

// LoadCSV reads a CSV task table from path.
func LoadCSV(path string, rules LevelRules) ([]models.TaskRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, rules)
}

// ReadCSV reads a task table with a header row. Depth comes from the depth
// column when the row has one, otherwise from rules. Names lose any leading
// indentation.
func ReadCSV(r io.Reader, rules LevelRules) ([]models.TaskRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := matchColumns(header)
	if cols.name < 0 {
		return nil, ErrMissingNameColumn
	}

	var records []models.TaskRecord
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		name := cell(row, cols.name)
		if name == "" {
			continue
		}
		id := normalizeID(cell(row, cols.id))
		if cols.id < 0 {
			id = strconv.Itoa(line - 1)
		}

		depth := -1
		if d, err := strconv.Atoi(cell(row, cols.depth)); err == nil && d >= 0 {
			depth = d
		}
		if depth < 0 {
			depth = rules.DepthFor(id, name)
		}

		records = append(records, models.TaskRecord{
			ID:              id,
			Depth:           depth,
			Name:            name,
			Status:          cell(row, cols.status),
			Assignee:        cell(row, cols.assignee),
			Start:           NormalizeDate(cell(row, cols.start)),
			End:             NormalizeDate(cell(row, cols.end)),
			PercentComplete: ParsePercent(cell(row, cols.percent)),
			Duration:        cell(row, cols.duration),
			Predecessors:    splitList(cell(row, cols.predecessors)),
		})
	}
	return records, nil
}

// CSVOptions configures WriteCSV.
type CSVOptions struct {
	// IndentNames prefixes each name with four spaces per depth level.
	IndentNames bool
	// BOM writes a UTF-8 byte order mark so spreadsheet tools pick the encoding.
	BOM bool
}

// WriteCSV writes records as the canonical task table.
func WriteCSV(w io.Writer, records []models.TaskRecord, opts CSVOptions) error {
	if opts.BOM {
		if _, err := io.WriteString(w, "\ufeff"); err != nil {
			return fmt.Errorf("write bom: %w", err)
		}
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		name := r.Name
		if opts.IndentNames {
			name = strings.Repeat("    ", r.Depth) + name
		}
		row := []string{
			r.ID,
			strconv.Itoa(r.Depth),
			name,
			r.Status,
			r.Assignee,
			r.Start,
			r.End,
			r.PercentText(),
			r.Duration,
			strings.Join(r.Predecessors, ","),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
