package hierarchy

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/ganttline/internal/models"
)

func TestParseOp(t *testing.T) {
	tests := []struct {
		tok  string
		want string
	}{
		{"depth=1", "depth=1"},
		{"depth=1,2", "depth=1,2"},
		{"level=3", "depth=3"},
		{"nivel=0, 2", "depth=0,2"},
		{"id=42", "id=42"},
		{"id=42:1", "id=42:1"},
		{"ID=A-7", "id=A-7"},
	}
	for _, tt := range tests {
		t.Run(tt.tok, func(t *testing.T) {
			op, err := ParseOp(tt.tok)
			require.NoError(t, err)
			assert.Equal(t, tt.want, op.String())
		})
	}
}

func TestParseOp_Invalid(t *testing.T) {
	for _, tok := range []string{"depth", "depth=", "depth=x", "depth=-1", "id=", "id=:2", "id=3:x", "color=red"} {
		_, err := ParseOp(tok)
		assert.True(t, errors.Is(err, ErrInvalidOp), "token %q: got %v", tok, err)
	}
}

func TestParsePipeline_Stages(t *testing.T) {
	p, err := ParsePipeline([]string{"depth=1", "id=2", "|", "id=3|depth=2"})
	require.NoError(t, err)
	require.Len(t, p, 3)
	assert.Len(t, p[0], 2)
	assert.Len(t, p[1], 1)
	assert.Len(t, p[2], 1)
	assert.Equal(t, "depth=1 id=2 | id=3 | depth=2", p.String())
	assert.False(t, p.Empty())
}

func TestParsePipeline_Empty(t *testing.T) {
	p, err := ParsePipeline(nil)
	require.NoError(t, err)
	assert.True(t, p.Empty())

	res, err := Apply(plan(), p, Options{})
	require.NoError(t, err)
	assert.Equal(t, plan(), res.Tasks)
	assert.Empty(t, res.Steps)
}

func TestWithExpand(t *testing.T) {
	p, err := ParsePipeline([]string{"depth=2", "id=6", "id=7:3"})
	require.NoError(t, err)
	x := p.WithExpand()

	assert.False(t, p[0][1].FromSource, "original untouched")
	assert.True(t, x[0][1].FromSource)
	require.NotNil(t, x[0][1].MaxDepth)
	assert.Equal(t, 1, *x[0][1].MaxDepth)
	assert.Equal(t, 3, *x[0][2].MaxDepth)
	assert.False(t, x[0][0].FromSource)
}

func TestApplyOps_Sequential(t *testing.T) {
	ops := []Op{
		{Kind: OpDepth, Depths: []int{3}},
		{Kind: OpID, ID: "6"},
	}
	got := ApplyOps(plan(), ops)
	assert.Equal(t, []string{"1", "2", "6", "7", "9"}, ids(got))
}

func TestApplyOps_FromSourceIgnoresPreviousResult(t *testing.T) {
	ops := []Op{
		{Kind: OpDepth, Depths: []int{1}},
		{Kind: OpID, ID: "6", MaxDepth: intp(1), FromSource: true},
	}
	got := ApplyOps(plan(), ops)
	assert.Equal(t, []string{"1", "2", "6", "7", "9"}, ids(got))

	ops[1].FromSource = false
	got = ApplyOps(plan(), ops)
	assert.Empty(t, got, "id 6 was filtered out by the depth op")
}

func TestApply_StepsAndWarnings(t *testing.T) {
	p, err := ParsePipeline([]string{"depth=2", "|", "id=99"})
	require.NoError(t, err)

	var seen []StepResult
	res, err := Apply(plan(), p, Options{OnStep: func(s StepResult) { seen = append(seen, s) }})
	require.NoError(t, err)

	require.Len(t, res.Steps, 2)
	assert.Equal(t, res.Steps, seen)
	assert.Equal(t, 0, res.Steps[0].Stage)
	assert.Equal(t, 6, res.Steps[0].Count)
	assert.Equal(t, 1, res.Steps[1].Stage)
	assert.Empty(t, res.Tasks)
	assert.Equal(t, []string{"id 99 not found"}, res.Warnings())
}

type recordingMaterializer struct {
	stages []int
	closed bool
}

func (m *recordingMaterializer) Materialize(records []models.TaskRecord, stage int) ([]models.TaskRecord, error) {
	m.stages = append(m.stages, stage)
	out := make([]models.TaskRecord, len(records))
	copy(out, records)
	return out, nil
}

func (m *recordingMaterializer) Close() error {
	m.closed = true
	return nil
}

func TestApply_MaterializesBetweenStagesOnly(t *testing.T) {
	p, err := ParsePipeline([]string{"depth=3 | id=6 | depth=2,3"})
	require.NoError(t, err)

	m := &recordingMaterializer{}
	res, err := Apply(plan(), p, Options{Materializer: m})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, m.stages)
	assert.True(t, m.closed)

	inMem, err := Apply(plan(), p, Options{})
	require.NoError(t, err)
	if diff := cmp.Diff(inMem.Tasks, res.Tasks); diff != "" {
		t.Errorf("materialized result differs from in-memory (-mem +mat):\n%s", diff)
	}
}

type failingMaterializer struct{ InMemory }

func (failingMaterializer) Materialize([]models.TaskRecord, int) ([]models.TaskRecord, error) {
	return nil, errors.New("disk full")
}

func TestApply_MaterializeError(t *testing.T) {
	p, err := ParsePipeline([]string{"depth=1", "|", "depth=2"})
	require.NoError(t, err)
	_, err = Apply(plan(), p, Options{Materializer: failingMaterializer{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
