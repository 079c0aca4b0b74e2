package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fentz26/ganttline/internal/models"
)

// ExportURL returns the CSV export address of a Google Sheets tab.
func ExportURL(sheetID, gid string) string {
	u := "https://docs.google.com/spreadsheets/d/" + url.PathEscape(sheetID) + "/export?format=csv"
	if gid != "" {
		u += "&gid=" + url.QueryEscape(gid)
	}
	return u
}

// FetchSheet downloads a sheet CSV export. Columns are positional: id, name,
// status, assignee, start, end, percent, duration, predecessors. Rows whose id
// is not numeric (headers, section notes) are skipped and depth comes from
// rules.
func FetchSheet(ctx context.Context, client *http.Client, sheetURL string, rules LevelRules) ([]models.TaskRecord, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sheetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch sheet: unexpected status %s", resp.Status)
	}
	return readPositional(resp.Body, rules)
}

func readPositional(r io.Reader, rules LevelRules) ([]models.TaskRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var records []models.TaskRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read sheet csv: %w", err)
		}
		id := normalizeID(cell(row, 0))
		if _, err := strconv.Atoi(id); err != nil {
			continue
		}
		name := cell(row, 1)
		records = append(records, models.TaskRecord{
			ID:              id,
			Depth:           rules.DepthFor(id, name),
			Name:            name,
			Status:          cell(row, 2),
			Assignee:        cell(row, 3),
			Start:           NormalizeDate(cell(row, 4)),
			End:             NormalizeDate(cell(row, 5)),
			PercentComplete: ParsePercent(cell(row, 6)),
			Duration:        cell(row, 7),
			Predecessors:    splitList(cell(row, 8)),
		})
	}
	return records, nil
}
