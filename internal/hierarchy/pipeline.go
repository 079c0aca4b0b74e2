package hierarchy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fentz26/ganttline/internal/models"
)

// ErrInvalidOp reports a filter token that cannot be parsed.
var ErrInvalidOp = errors.New("invalid filter op")

// OpKind selects the filter an Op runs.
type OpKind string

const (
	OpDepth OpKind = "depth"
	OpID    OpKind = "id"
)

// StageSeparator splits a pipeline into stages.
const StageSeparator = "|"

// Op is one filter step.
type Op struct {
	Kind   OpKind
	Depths []int
	ID     string
	// MaxDepth bounds an id op to that many levels below the target.
	MaxDepth *int
	// FromSource makes an id op run on the unfiltered source instead of the
	// output of the previous op.
	FromSource bool
}

func (o Op) String() string {
	switch o.Kind {
	case OpDepth:
		parts := make([]string, len(o.Depths))
		for i, d := range o.Depths {
			parts[i] = strconv.Itoa(d)
		}
		return "depth=" + strings.Join(parts, ",")
	case OpID:
		s := "id=" + o.ID
		if o.MaxDepth != nil {
			s += ":" + strconv.Itoa(*o.MaxDepth)
		}
		if o.FromSource {
			s += "@source"
		}
		return s
	}
	return string(o.Kind)
}

// Stage is a run of ops applied back to back.
type Stage []Op

// Pipeline is an ordered list of stages. The running result is materialized
// between stages.
type Pipeline []Stage

func (p Pipeline) String() string {
	stages := make([]string, len(p))
	for i, st := range p {
		ops := make([]string, len(st))
		for j, op := range st {
			ops[j] = op.String()
		}
		stages[i] = strings.Join(ops, " ")
	}
	return strings.Join(stages, " | ")
}

// Empty reports whether the pipeline holds no ops.
func (p Pipeline) Empty() bool {
	for _, st := range p {
		if len(st) > 0 {
			return false
		}
	}
	return true
}

// WithExpand returns a copy where every id op reads from the source and,
// unless it already has a bound, expands a single level.
func (p Pipeline) WithExpand() Pipeline {
	out := make(Pipeline, len(p))
	for i, st := range p {
		ns := make(Stage, len(st))
		for j, op := range st {
			if op.Kind == OpID {
				op.FromSource = true
				if op.MaxDepth == nil {
					one := 1
					op.MaxDepth = &one
				}
			}
			ns[j] = op
		}
		out[i] = ns
	}
	return out
}

// ParseOp parses "depth=1,2", "level=1", "id=42" or "id=42:1".
func ParseOp(tok string) (Op, error) {
	key, value, ok := strings.Cut(strings.TrimSpace(tok), "=")
	if !ok || value == "" {
		return Op{}, fmt.Errorf("%w: %q", ErrInvalidOp, tok)
	}

	switch strings.ToLower(key) {
	case "depth", "level", "nivel":
		var depths []int
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			d, err := strconv.Atoi(part)
			if err != nil || d < 0 {
				return Op{}, fmt.Errorf("%w: depth %q", ErrInvalidOp, part)
			}
			depths = append(depths, d)
		}
		return Op{Kind: OpDepth, Depths: depths}, nil

	case "id":
		id, bound, hasBound := strings.Cut(value, ":")
		id = strings.TrimSpace(id)
		if id == "" {
			return Op{}, fmt.Errorf("%w: empty id in %q", ErrInvalidOp, tok)
		}
		op := Op{Kind: OpID, ID: id}
		if hasBound {
			k, err := strconv.Atoi(strings.TrimSpace(bound))
			if err != nil || k < 0 {
				return Op{}, fmt.Errorf("%w: expansion bound %q", ErrInvalidOp, bound)
			}
			op.MaxDepth = &k
		}
		return op, nil
	}
	return Op{}, fmt.Errorf("%w: unknown key %q", ErrInvalidOp, key)
}

// ParsePipeline parses filter tokens. "|" separates stages, either as its own
// token or inside one.
func ParsePipeline(tokens []string) (Pipeline, error) {
	joined := strings.Join(tokens, " ")
	var p Pipeline
	for _, segment := range strings.Split(joined, StageSeparator) {
		var st Stage
		for _, tok := range strings.Fields(segment) {
			op, err := ParseOp(tok)
			if err != nil {
				return nil, err
			}
			st = append(st, op)
		}
		p = append(p, st)
	}
	return p, nil
}

// ApplyOps runs ops in order, each on the output of the previous one. records
// doubles as the source for ops with FromSource set.
func ApplyOps(records []models.TaskRecord, ops []Op) []models.TaskRecord {
	current := records
	for _, op := range ops {
		current = runOp(records, current, op)
	}
	if len(ops) == 0 {
		return clone(records)
	}
	return current
}

func runOp(source, current []models.TaskRecord, op Op) []models.TaskRecord {
	switch op.Kind {
	case OpDepth:
		return FilterByDepth(current, op.Depths)
	case OpID:
		base := current
		if op.FromSource {
			base = source
		}
		return FilterByID(base, op.ID, op.MaxDepth)
	}
	return current
}

// Materializer hands the running result from one stage to the next.
type Materializer interface {
	Materialize(records []models.TaskRecord, stage int) ([]models.TaskRecord, error)
	Close() error
}

// InMemory passes results between stages unchanged.
type InMemory struct{}

// Materialize returns records as is.
func (InMemory) Materialize(records []models.TaskRecord, _ int) ([]models.TaskRecord, error) {
	return records, nil
}

// Close is a no-op.
func (InMemory) Close() error { return nil }

// StepResult describes the outcome of one op.
type StepResult struct {
	Stage int
	Op    Op
	Count int
}

// Result is the output of Apply.
type Result struct {
	Tasks []models.TaskRecord
	Steps []StepResult
}

// Warnings lists the ops that left nothing behind.
func (r *Result) Warnings() []string {
	var out []string
	for _, s := range r.Steps {
		if s.Count > 0 {
			continue
		}
		switch s.Op.Kind {
		case OpID:
			out = append(out, fmt.Sprintf("id %s not found", s.Op.ID))
		default:
			out = append(out, fmt.Sprintf("no tasks matched %s", s.Op))
		}
	}
	return out
}

// Options configures Apply.
type Options struct {
	Materializer Materializer
	// OnStep is called after every op.
	OnStep func(StepResult)
}

// Apply runs the pipeline over source. The materializer is closed before
// returning.
func Apply(source []models.TaskRecord, p Pipeline, opts Options) (res *Result, err error) {
	m := opts.Materializer
	if m == nil {
		m = InMemory{}
	}
	defer func() {
		if cerr := m.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close materializer: %w", cerr)
		}
	}()

	res = &Result{}
	current := clone(source)
	for i, st := range p {
		for _, op := range st {
			current = runOp(source, current, op)
			step := StepResult{Stage: i, Op: op, Count: len(current)}
			res.Steps = append(res.Steps, step)
			if opts.OnStep != nil {
				opts.OnStep(step)
			}
		}
		if i < len(p)-1 {
			current, err = m.Materialize(current, i)
			if err != nil {
				return nil, fmt.Errorf("materialize stage %d: %w", i, err)
			}
		}
	}
	res.Tasks = current
	return res, nil
}
