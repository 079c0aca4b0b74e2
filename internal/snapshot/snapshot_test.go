package snapshot

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/ganttline/internal/models"
)

func sampleTasks() []models.TaskRecord {
	return []models.TaskRecord{
		{ID: "1", Depth: 0, Name: "Proyecto", Status: "En progreso", Start: "05/01/26", End: "30/01/26", PercentComplete: models.Percent(40), Duration: "20d"},
		{ID: "2", Depth: 1, Name: "Ambiente 'DEV'", Assignee: "Ana, Luis", PercentComplete: models.Percent(0), Predecessors: []string{"1"}},
		{ID: "2", Depth: 1, Name: "Ambiente 'DEV'", Assignee: "Ana, Luis", PercentComplete: models.Percent(0), Predecessors: []string{"1"}},
		{ID: "A-7", Depth: 2, Name: "Línea\tcon tab"},
	}
}

func TestWriteReadFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "tasks.json")
	snap := New("plan.xlsx", "depth=1", sampleTasks())

	require.NoError(t, WriteFile(path, snap))
	got, err := ReadFile(path)
	require.NoError(t, err)

	if diff := cmp.Diff(snap, got); diff != "" {
		t.Errorf("snapshot round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteFile_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteFile(filepath.Join(dir, "tasks.json"), New("", "", nil)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tasks.json", entries[0].Name())
}

func TestDecode_EmptyTasksAndVersion(t *testing.T) {
	snap, err := Decode(strings.NewReader(`{"version":1,"tasks":null}`))
	require.NoError(t, err)
	assert.NotNil(t, snap.Tasks)
	assert.Empty(t, snap.Tasks)

	_, err = Decode(strings.NewReader(`{"version":9,"tasks":[]}`))
	require.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestFormatPython(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatPython(&buf, sampleTasks()[:2]))

	want := "tasks = [\n" +
		"    [1, 0, 'Proyecto', 'En progreso', '', '05/01/26', '30/01/26', 40, '20d', ''],\n" +
		"    [2, 1, 'Ambiente \\'DEV\\'', '', 'Ana, Luis', None, None, 0, '', '1'],\n" +
		"]\n"
	assert.Equal(t, want, buf.String())
}

func TestFormatPython_QuotesNonNumericIDs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatPython(&buf, sampleTasks()[3:]))
	assert.Contains(t, buf.String(), "['A-7', 2, 'Línea\\tcon tab', '', '', None, None, None, '', '']")
}

func TestTempMaterializer(t *testing.T) {
	dir := t.TempDir()
	m := NewTempMaterializer(dir)

	got, err := m.Materialize(sampleTasks(), 1)
	require.NoError(t, err)
	if diff := cmp.Diff(sampleTasks(), got); diff != "" {
		t.Errorf("materialized records mismatch (-want +got):\n%s", diff)
	}

	_, err = m.Materialize(nil, 2)
	require.NoError(t, err)

	files := m.Files()
	require.Len(t, files, 2)
	for _, f := range files {
		assert.FileExists(t, f)
	}

	require.NoError(t, m.Close())
	for _, f := range files {
		assert.NoFileExists(t, f)
	}
}
