package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fentz26/ganttline/internal/audit"
	"github.com/fentz26/ganttline/internal/loader"
	"github.com/fentz26/ganttline/internal/models"
	"github.com/fentz26/ganttline/internal/report"
	"github.com/fentz26/ganttline/internal/snapshot"
	"github.com/fentz26/ganttline/internal/store"
)

// loadPlan reads path, or the configured sheet when path is empty. It returns
// the records and the source actually read.
func loadPlan(ctx context.Context, path string) ([]models.TaskRecord, string, error) {
	if path == "" {
		path = cfg.Sheet.ExportURL()
	}
	if path == "" {
		return nil, "", fmt.Errorf("no source given and sheet.id is not configured")
	}

	records, err := loader.Load(ctx, path, loader.Options{
		Rules:      cfg.Levels,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     logger,
	})
	if err != nil {
		return nil, "", fmt.Errorf("load %s: %w", path, err)
	}
	return records, path, nil
}

// openHistory opens the history database. It returns nil when history is
// turned off.
func openHistory(disabled bool) (*store.Store, error) {
	if disabled || cfg.Paths.History == "" {
		return nil, nil
	}
	st, err := store.New(cfg.Paths.History)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return st, nil
}

// outputFlags are shared by the commands that write a snapshot.
type outputFlags struct {
	out       string
	python    bool
	debug     bool
	noHistory bool
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Snapshot path (default paths.snapshot)")
	cmd.Flags().BoolVar(&f.python, "python", false, "Also write the tasks as a Python list next to the snapshot")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "Print the depths present and every selected task")
	cmd.Flags().BoolVar(&f.noHistory, "no-history", false, "Do not record this run in the history database")
}

func (f *outputFlags) path() string {
	if f.out != "" {
		return f.out
	}
	return cfg.Paths.Snapshot
}

// selection is the outcome of filter or select, ready to be written.
type selection struct {
	action   string
	inputs   audit.Inputs
	source   string
	pipeline string
	tasks    []models.TaskRecord
	warnings []string
}

// published says where a selection went.
type published struct {
	path       string
	snapshotID string
}

// publish reports warnings, writes the snapshot handoff and records the run.
// An empty selection is still written.
func publish(cmd *cobra.Command, sel selection, f *outputFlags) (*published, error) {
	warnings := sel.warnings
	if len(sel.tasks) == 0 && len(warnings) == 0 {
		warnings = append(warnings, "no tasks selected")
	}
	for _, w := range warnings {
		logger.Warn("Selection warning", zap.String("warning", w))
	}
	report.WriteWarnings(cmd.ErrOrStderr(), warnings)

	if f.debug {
		if err := report.WriteDebug(cmd.OutOrStdout(), sel.tasks); err != nil {
			return nil, err
		}
	}

	pub := &published{path: f.path()}
	snap := snapshot.New(sel.source, sel.pipeline, sel.tasks)
	if err := snapshot.WriteFile(pub.path, snap); err != nil {
		return nil, err
	}
	if f.python {
		pyPath := pythonPath(pub.path)
		if err := snapshot.WritePythonFile(pyPath, sel.tasks); err != nil {
			return nil, err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", pyPath)
	}

	pub.snapshotID = recordRun(f.noHistory, snap, sel)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d tasks to %s\n", len(sel.tasks), pub.path)
	return pub, nil
}

// recordRun stores snap and its decision. History problems are logged and
// never fail the run.
func recordRun(disabled bool, snap *models.Snapshot, sel selection) string {
	st, err := openHistory(disabled)
	if err != nil {
		logger.Warn("History unavailable", zap.Error(err))
		return ""
	}
	if st == nil {
		return ""
	}
	defer st.Close()

	sum, err := st.SaveSnapshot(snap)
	if err != nil {
		logger.Warn("Failed to save snapshot history", zap.Error(err))
		return ""
	}

	outcome := audit.OutcomeOK
	if len(sel.tasks) == 0 {
		outcome = audit.OutcomeEmpty
	}
	details := fmt.Sprintf("%d tasks", len(sel.tasks))
	if len(sel.warnings) > 0 {
		details += "; " + strings.Join(sel.warnings, "; ")
	}
	if _, err := audit.NewDecisionWriter(st).Record(sel.action, sel.inputs, outcome, sum.ID, details); err != nil {
		logger.Warn("Failed to record decision", zap.Error(err))
	}
	logger.Debug("Recorded run", zap.String("snapshot_id", sum.ID), zap.String("action", sel.action))
	return sum.ID
}

// recordDecision writes a decision that has no snapshot of its own.
func recordDecision(disabled bool, action string, inputs audit.Inputs, outcome, snapshotID, details string) {
	st, err := openHistory(disabled)
	if err != nil {
		logger.Warn("History unavailable", zap.Error(err))
		return
	}
	if st == nil {
		return
	}
	defer st.Close()

	if _, err := audit.NewDecisionWriter(st).Record(action, inputs, outcome, snapshotID, details); err != nil {
		logger.Warn("Failed to record decision", zap.Error(err))
	}
}

// pythonPath swaps the snapshot extension for .py.
func pythonPath(snapshotPath string) string {
	return strings.TrimSuffix(snapshotPath, filepath.Ext(snapshotPath)) + ".py"
}
