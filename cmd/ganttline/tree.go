package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fentz26/ganttline/internal/hierarchy"
	"github.com/fentz26/ganttline/internal/report"
)

var treeCmd = &cobra.Command{
	Use:   "tree <source> <id>",
	Short: "Show the ancestors, children, siblings and descendants of a task",
	Args:  cobra.ExactArgs(2),
	RunE:  runTree,
}

func runTree(cmd *cobra.Command, args []string) error {
	records, _, err := loadPlan(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	ix := hierarchy.BuildIndex(records)
	pos, ok := ix.Position(args[1])
	if !ok {
		msg := fmt.Sprintf("id %s not found", args[1])
		logger.Warn("Task not found", zap.String("id", args[1]))
		report.WriteWarnings(cmd.ErrOrStderr(), []string{msg})
		return nil
	}

	sections := []struct {
		title     string
		positions []int
	}{
		{"Ancestors", ix.AncestorPositions(pos)},
		{"Task", []int{pos}},
		{"Children", ix.ChildrenAt(pos)},
		{"Siblings", ix.SiblingPositions(pos)},
		{"Descendants", ix.DescendantPositions(pos)},
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, s := range sections {
		fmt.Fprintf(w, "%s (%d)\n", s.title, len(s.positions))
		for _, p := range s.positions {
			t := ix.Record(p)
			fmt.Fprintf(w, "  %s\t%s%s\t%s\n", t.ID, strings.Repeat("  ", t.Depth), t.Name, t.PercentText())
		}
	}
	return w.Flush()
}
