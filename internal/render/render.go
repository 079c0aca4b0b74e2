// Package render hands a snapshot to the external scene renderer.
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fentz26/ganttline/internal/connectors"
)

// TasksEnv names the environment variable carrying the snapshot path.
const TasksEnv = "GANTTLINE_TASKS"

// ErrRenderFailed is returned when the renderer exits non-zero.
var ErrRenderFailed = errors.New("renderer failed")

// Options describe one renderer invocation.
type Options struct {
	Command   string
	SceneFile string
	Scene     string
	Quality   string
	Preview   bool
}

// Args builds the renderer argument list: [-quality] [-p] sceneFile [scene].
func (o Options) Args() []string {
	var args []string
	if q := strings.TrimSpace(o.Quality); q != "" {
		if !strings.HasPrefix(q, "-") {
			q = "-" + q
		}
		args = append(args, q)
	}
	if o.Preview {
		args = append(args, "-p")
	}
	args = append(args, o.SceneFile)
	if o.Scene != "" {
		args = append(args, o.Scene)
	}
	return args
}

// Renderer runs the configured command through a Connector.
type Renderer struct {
	conn   connectors.Connector
	opts   Options
	logger *zap.Logger
}

// New creates a Renderer. A nil logger discards output.
func New(conn connectors.Connector, opts Options, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Command == "" {
		opts.Command = "manim"
	}
	return &Renderer{conn: conn, opts: opts, logger: logger}
}

// Render runs the renderer against snapshotPath. The connector is expected to
// expose the path to the child as TasksEnv.
func (r *Renderer) Render(ctx context.Context, snapshotPath string) (*connectors.ExecResult, error) {
	if r.opts.SceneFile == "" {
		return nil, fmt.Errorf("render: scene file not configured")
	}
	args := r.opts.Args()
	r.logger.Info("Rendering",
		zap.String("connector", r.conn.Name()),
		zap.String("command", r.opts.Command),
		zap.Strings("args", args),
		zap.String("snapshot", snapshotPath),
	)

	res, err := r.conn.Execute(ctx, r.opts.Command, args)
	if err != nil {
		return nil, fmt.Errorf("run renderer: %w", err)
	}
	if res.ExitCode != 0 {
		r.logger.Warn("Renderer exited with error",
			zap.Int("exit_code", res.ExitCode),
			zap.String("stderr", tail(res.Stderr, 2000)),
		)
		return res, fmt.Errorf("%w: exit code %d", ErrRenderFailed, res.ExitCode)
	}
	return res, nil
}

// Env returns the environment entry that points the renderer at snapshotPath.
func Env(snapshotPath string) string {
	return TasksEnv + "=" + snapshotPath
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
