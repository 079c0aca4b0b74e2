// Package loader reads project plans from spreadsheet exports into TaskRecords.
//
// Supported sources are XLSX workbooks (depth from the name cell's indent),
// MS Project XML (depth from OutlineLevel), CSV tables, Google Sheets CSV
// exports fetched over HTTP, and ganttline snapshot files.
package loader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fentz26/ganttline/internal/models"
	"github.com/fentz26/ganttline/internal/snapshot"
)

// Sentinel errors for loader operations.
var (
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrMissingNameColumn = errors.New("name column not found")
	ErrEmptyInput        = errors.New("input has no rows")
)

// Options configures Load.
type Options struct {
	// Rules assign depths to rows from sources without indentation.
	Rules      LevelRules
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Load reads path, choosing the reader from its extension. http(s) URLs are
// fetched as CSV exports.
func Load(ctx context.Context, path string, opts Options) ([]models.TaskRecord, error) {
	log := opts.logger()

	var (
		records []models.TaskRecord
		err     error
	)
	switch {
	case strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"):
		records, err = FetchSheet(ctx, opts.HTTPClient, path, opts.Rules)
	default:
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xlsx", ".xlsm":
			records, err = LoadXLSX(path)
		case ".xml":
			records, err = LoadMSProject(path)
		case ".csv":
			records, err = LoadCSV(path, opts.Rules)
		case ".json":
			var snap *models.Snapshot
			snap, err = snapshot.ReadFile(path)
			if err == nil {
				records = snap.Tasks
			}
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
		}
	}
	if err != nil {
		return nil, err
	}

	log.Debug("Loaded plan", zap.String("source", path), zap.Int("tasks", len(records)))
	return records, nil
}
