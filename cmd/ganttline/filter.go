package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fentz26/ganttline/internal/audit"
	"github.com/fentz26/ganttline/internal/hierarchy"
	"github.com/fentz26/ganttline/internal/report"
	"github.com/fentz26/ganttline/internal/snapshot"
)

const opsHelp = `Ops run left to right, each on the result of the previous one:

  depth=1,2   keep tasks at these depths (level= is an alias)
  id=42       keep task 42, its ancestors and its whole subtree
  id=42:1     same, but only one level below 42

Separate stages with a quoted "|"; each stage starts from the previous
stage's saved result.`

var filterCmd = &cobra.Command{
	Use:   "filter <source> [op...]",
	Short: "Filter a plan by depth and id subtree",
	Long:  "Filter a plan and write the snapshot read by the renderer.\n\n" + opsHelp,
	Example: `  ganttline filter plan.xlsx depth=0,1
  ganttline filter plan.xml id=21 --expand
  ganttline filter plan.csv id=3 "|" depth=2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFilter,
}

var selectCmd = &cobra.Command{
	Use:   "select <source>",
	Short: "Select tasks by id list",
	Long: `Select tasks by id. An id with children brings its whole subtree; a leaf
brings its ancestors and its siblings.`,
	Example: `  ganttline select plan.xlsx --ids 21,30-35
  ganttline select plan.xlsx --ids 4,9 --depth 2`,
	Args: cobra.ExactArgs(1),
	RunE: runSelect,
}

var (
	filterExpand      bool
	filterMaterialize bool
	filterOutput      outputFlags

	selectIDs    string
	selectDepth  int
	selectOutput outputFlags
)

func init() {
	filterCmd.Flags().BoolVar(&filterExpand, "expand", false, "Read id ops from the full plan and expand one level")
	filterCmd.Flags().BoolVar(&filterMaterialize, "materialize", false, "Hand stages off through snapshot files in paths.stage_dir")
	filterOutput.register(filterCmd)

	selectCmd.Flags().StringVar(&selectIDs, "ids", "", "Comma separated ids and ranges, e.g. 21,30-35")
	selectCmd.Flags().IntVar(&selectDepth, "depth", 0, "Only accept ids at this depth")
	_ = selectCmd.MarkFlagRequired("ids")
	selectOutput.register(selectCmd)
}

func runFilter(cmd *cobra.Command, args []string) error {
	sel, err := filterPlan(cmd, args, filterExpand, filterMaterialize)
	if err != nil {
		return err
	}
	_, err = publish(cmd, *sel, &filterOutput)
	return err
}

// filterPlan loads args[0] and runs the ops in args[1:].
func filterPlan(cmd *cobra.Command, args []string, expand, materialize bool) (*selection, error) {
	records, source, err := loadPlan(cmd.Context(), args[0])
	if err != nil {
		return nil, err
	}

	p, err := hierarchy.ParsePipeline(args[1:])
	if err != nil {
		return nil, err
	}
	if expand {
		p = p.WithExpand()
	}

	opts := hierarchy.Options{
		OnStep: func(st hierarchy.StepResult) {
			logger.Debug("Applied op",
				zap.Int("stage", st.Stage+1),
				zap.String("op", st.Op.String()),
				zap.Int("tasks", st.Count),
			)
		},
	}
	if materialize {
		opts.Materializer = snapshot.NewTempMaterializer(cfg.Paths.StageDir)
	}

	res, err := hierarchy.Apply(records, p, opts)
	if err != nil {
		return nil, err
	}
	if !p.Empty() {
		report.WriteSteps(cmd.ErrOrStderr(), res.Steps)
	}

	return &selection{
		action:   audit.ActionFilter,
		inputs:   audit.Inputs{Source: source, Pipeline: p.String(), Expand: expand},
		source:   source,
		pipeline: p.String(),
		tasks:    res.Tasks,
		warnings: res.Warnings(),
	}, nil
}

func runSelect(cmd *cobra.Command, args []string) error {
	ids, err := hierarchy.ParseIDList(selectIDs)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("--ids lists no ids")
	}

	records, source, err := loadPlan(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	var depth *int
	pipeline := "ids=" + strings.Join(ids, ",")
	if cmd.Flags().Changed("depth") {
		depth = &selectDepth
		pipeline += fmt.Sprintf(" depth=%d", selectDepth)
	}

	tasks, warnings := hierarchy.SelectByIDs(records, ids, depth)
	_, err = publish(cmd, selection{
		action:   audit.ActionSelect,
		inputs:   audit.Inputs{Source: source, IDs: ids, Depth: depth},
		source:   source,
		pipeline: pipeline,
		tasks:    tasks,
		warnings: warnings,
	}, &selectOutput)
	return err
}
