package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fentz26/ganttline/internal/models"
	"github.com/fentz26/ganttline/internal/snapshot"
	"github.com/fentz26/ganttline/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse <source>",
	Short: "Explore a plan interactively",
	Long: `Open a plan in the terminal browser. enter drills into a task, backspace
goes back up, : runs filter ops and w writes what is on screen as the snapshot.`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	records, source, err := loadPlan(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	export := func(tasks []models.TaskRecord, pipeline string) (string, error) {
		path := cfg.Paths.Snapshot
		if err := snapshot.WriteFile(path, snapshot.New(source, pipeline, tasks)); err != nil {
			return "", err
		}
		return path, nil
	}

	app := tui.New(source, records, export)
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
