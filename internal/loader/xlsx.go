package loader

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/fentz26/ganttline/internal/models"
)

// LoadXLSX reads the first sheet of a workbook. Row 1 is the header. A row's
// depth is the alignment indent of its name cell; rows with an empty name are
// skipped. Without an id column the id is the row number minus one.
func LoadXLSX(path string) ([]models.TaskRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", ErrEmptyInput, path)
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %s", ErrEmptyInput, sheet)
	}

	cols := matchColumns(rows[0])
	if cols.name < 0 {
		return nil, fmt.Errorf("%w in %s", ErrMissingNameColumn, path)
	}

	var records []models.TaskRecord
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowNum := i + 1
		name := cell(row, cols.name)
		if name == "" {
			continue
		}

		depth, err := indentOf(f, sheet, cols.name+1, rowNum)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		id := normalizeID(cell(row, cols.id))
		if cols.id < 0 {
			id = strconv.Itoa(rowNum - 1)
		}

		records = append(records, models.TaskRecord{
			ID:              id,
			Depth:           depth,
			Name:            name,
			Status:          cell(row, cols.status),
			Assignee:        cell(row, cols.assignee),
			Start:           normalizeCellDate(cell(row, cols.start)),
			End:             normalizeCellDate(cell(row, cols.end)),
			PercentComplete: ParsePercent(cell(row, cols.percent)),
			Duration:        cell(row, cols.duration),
			Predecessors:    splitList(cell(row, cols.predecessors)),
		})
	}
	return records, nil
}

func indentOf(f *excelize.File, sheet string, col, row int) (int, error) {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return 0, err
	}
	styleID, err := f.GetCellStyle(sheet, ref)
	if err != nil {
		return 0, fmt.Errorf("cell style %s: %w", ref, err)
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		return 0, fmt.Errorf("style %d: %w", styleID, err)
	}
	if style == nil || style.Alignment == nil {
		return 0, nil
	}
	return style.Alignment.Indent, nil
}
