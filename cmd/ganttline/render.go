package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fentz26/ganttline/internal/audit"
	"github.com/fentz26/ganttline/internal/connectors/localexec"
	"github.com/fentz26/ganttline/internal/render"
	"github.com/fentz26/ganttline/internal/report"
)

var renderCmd = &cobra.Command{
	Use:   "render <source> [op...]",
	Short: "Filter a plan and run the timeline renderer on it",
	Long:  "Filter a plan, write the snapshot and run renderer.command on it.\n\n" + opsHelp,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRender,
}

var (
	renderExpand      bool
	renderMaterialize bool
	renderSceneFile   string
	renderScene       string
	renderQuality     string
	renderPreview     bool
	renderOnlyDebug   bool
	renderOutput      outputFlags
)

func init() {
	renderCmd.Flags().BoolVar(&renderExpand, "expand", false, "Read id ops from the full plan and expand one level")
	renderCmd.Flags().BoolVar(&renderMaterialize, "materialize", false, "Hand stages off through snapshot files in paths.stage_dir")
	renderCmd.Flags().StringVar(&renderSceneFile, "scene-file", "", "Scene file (default renderer.scene_file)")
	renderCmd.Flags().StringVar(&renderScene, "scene", "", "Scene to render (default renderer.scene)")
	renderCmd.Flags().StringVar(&renderQuality, "quality", "", "Quality flag such as ql or qh (default renderer.quality)")
	renderCmd.Flags().BoolVar(&renderPreview, "preview", false, "Open the result when rendering finishes")
	renderCmd.Flags().BoolVar(&renderOnlyDebug, "only-debug", false, "Print the selected tasks and stop before rendering")
	renderOutput.register(renderCmd)
}

func renderOptions() render.Options {
	opts := render.Options{
		Command:   cfg.Renderer.Command,
		SceneFile: cfg.Renderer.SceneFile,
		Scene:     cfg.Renderer.Scene,
		Quality:   cfg.Renderer.Quality,
		Preview:   cfg.Renderer.Preview || renderPreview,
	}
	if renderSceneFile != "" {
		opts.SceneFile = renderSceneFile
	}
	if renderScene != "" {
		opts.Scene = renderScene
	}
	if renderQuality != "" {
		opts.Quality = renderQuality
	}
	return opts
}

func runRender(cmd *cobra.Command, args []string) error {
	sel, err := filterPlan(cmd, args, renderExpand, renderMaterialize)
	if err != nil {
		return err
	}
	if renderOnlyDebug {
		report.WriteWarnings(cmd.ErrOrStderr(), sel.warnings)
		return report.WriteDebug(cmd.OutOrStdout(), sel.tasks)
	}

	pub, err := publish(cmd, *sel, &renderOutput)
	if err != nil {
		return err
	}
	snapshotPath, err := filepath.Abs(pub.path)
	if err != nil {
		return fmt.Errorf("resolve snapshot path: %w", err)
	}

	workDir := cfg.Renderer.WorkDir
	if workDir == "" {
		workDir, _ = os.Getwd()
	}
	conn := localexec.New(workDir,
		localexec.WithAllowed(cfg.Renderer.Allowed...),
		localexec.WithEnv(render.Env(snapshotPath)),
	)
	r := render.New(conn, renderOptions(), logger)

	fmt.Fprintf(cmd.OutOrStdout(), "Rendering %d tasks with %s...\n", len(sel.tasks), cfg.Renderer.Command)
	res, renderErr := r.Render(cmd.Context(), snapshotPath)
	if res != nil && res.Stdout != "" {
		fmt.Fprint(cmd.OutOrStdout(), res.Stdout)
	}

	outcome, details := audit.OutcomeOK, "rendered "+snapshotPath
	if renderErr != nil {
		outcome, details = audit.OutcomeFailed, renderErr.Error()
		if res != nil && errors.Is(renderErr, render.ErrRenderFailed) {
			fmt.Fprint(cmd.ErrOrStderr(), res.Stderr)
		}
	}
	recordDecision(renderOutput.noHistory, audit.ActionRender, sel.inputs, outcome, pub.snapshotID, details)
	return renderErr
}
