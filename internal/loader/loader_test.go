package loader

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fentz26/ganttline/internal/models"
)

func writeWorkbook(t *testing.T, rows [][]any, indents []int) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, ref, &row))
	}
	for i, indent := range indents {
		if indent == 0 {
			continue
		}
		style, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{Indent: indent}})
		require.NoError(t, err)
		ref, err := excelize.CoordinatesToCellName(2, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetCellStyle(sheet, ref, ref, style))
	}

	path := filepath.Join(t.TempDir(), "plan.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadXLSX_DepthFromIndent(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"ID", "Nombre de la tarea", "Estado", "Fecha de inicio", "Fecha de finalización", "Porcentaje completo"},
		{1, "Proyecto", "En progreso", "06/01/26", "30/01/26", 0.5},
		{2, "Ambiente DEV", "Completo", "06/01/2026", "09/01/2026", "100%"},
		{3, "Aprovisionamiento", "", "", "", ""},
		{4, "", "", "", "", ""},
		{5, "Soporte", "", "", "", ""},
	}, []int{0, 1, 2, 0, 0})

	got, err := LoadXLSX(path)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, []string{"1", "2", "3", "5"}, []string{got[0].ID, got[1].ID, got[2].ID, got[3].ID})
	assert.Equal(t, []int{0, 1, 2, 0}, []int{got[0].Depth, got[1].Depth, got[2].Depth, got[3].Depth})
	assert.Equal(t, "06/01/26", got[1].Start)
	assert.Equal(t, "09/01/26", got[1].End)
	require.NotNil(t, got[0].PercentComplete)
	assert.Equal(t, 50, *got[0].PercentComplete)
	assert.Equal(t, "100%", got[1].PercentText())
	assert.Nil(t, got[2].PercentComplete)
}

func TestLoadXLSX_MissingNameColumn(t *testing.T) {
	path := writeWorkbook(t, [][]any{{"ID", "Estado"}, {1, "x"}}, nil)
	_, err := LoadXLSX(path)
	require.ErrorIs(t, err, ErrMissingNameColumn)
}

const projectXML = `<?xml version="1.0" encoding="UTF-8"?>
<Project xmlns="http://schemas.microsoft.com/project">
  <Tasks>
    <Task><UID>0</UID><ID>0</ID><Name>Summary</Name><OutlineLevel>0</OutlineLevel></Task>
    <Task>
      <UID>10</UID><ID>1</ID><Name>Fase 1</Name><OutlineLevel>1</OutlineLevel>
      <Start>2026-01-05T08:00:00</Start><Finish>2026-01-16T17:00:00</Finish>
      <Duration>PT80H0M0S</Duration><PercentComplete>100</PercentComplete>
    </Task>
    <Task>
      <UID>11</UID><ID>2</ID><Name>Instalar</Name><OutlineLevel>2</OutlineLevel>
      <Start>2026-01-05T08:00:00</Start><Finish>2026-01-06T12:00:00</Finish>
      <Duration>PT12H0M0S</Duration><PercentComplete>40</PercentComplete>
      <PredecessorLink><PredecessorUID>10</PredecessorUID></PredecessorLink>
    </Task>
    <Task>
      <UID>12</UID><ID>3</ID><Name>Probar</Name><OutlineLevel>2</OutlineLevel>
      <Duration>PT0H0M0S</Duration><PercentComplete>0</PercentComplete>
    </Task>
  </Tasks>
  <Resources>
    <Resource><UID>1</UID><Name>Ana</Name></Resource>
    <Resource><UID>2</UID><Name>Luis</Name></Resource>
  </Resources>
  <Assignments>
    <Assignment><TaskUID>11</TaskUID><ResourceUID>1</ResourceUID></Assignment>
    <Assignment><TaskUID>11</TaskUID><ResourceUID>2</ResourceUID></Assignment>
  </Assignments>
</Project>`

func TestReadMSProject(t *testing.T) {
	got, err := ReadMSProject(strings.NewReader(projectXML))
	require.NoError(t, err)

	want := []models.TaskRecord{
		{ID: "1", Depth: 0, Name: "Fase 1", Status: StatusComplete, Start: "05/01/26", End: "16/01/26", PercentComplete: models.Percent(100), Duration: "10d"},
		{ID: "2", Depth: 1, Name: "Instalar", Status: StatusInProgress, Assignee: "Ana, Luis", Start: "05/01/26", End: "06/01/26", PercentComplete: models.Percent(40), Duration: "1.5d", Predecessors: []string{"1"}},
		{ID: "3", Depth: 1, Name: "Probar", Status: StatusNotStarted, PercentComplete: models.Percent(0), Duration: "0"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadMSProject mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSV_DepthColumnAndRules(t *testing.T) {
	input := "\ufeffID,Nivel,Nombre de Tarea,Estado,Avance,Predecesores\n" +
		"1,0,Proyecto,En progreso,45%,\n" +
		"2,,    Fase DEV,,0.25,1\n" +
		"3,,Tarea,,,\"1, 2\"\n" +
		"4,2,,,,\n"
	rules := LevelRules{
		Names:   []NameRule{{Substrings: []string{"Fase"}, Depth: 1}},
		Default: 2,
	}

	got, err := ReadCSV(strings.NewReader(input), rules)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, 0, got[0].Depth)
	assert.Equal(t, 1, got[1].Depth)
	assert.Equal(t, "Fase DEV", got[1].Name)
	assert.Equal(t, 2, got[2].Depth)
	assert.Equal(t, []string{"1", "2"}, got[2].Predecessors)
	assert.Equal(t, "25%", got[1].PercentText())
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), LevelRules{})
	require.ErrorIs(t, err, ErrEmptyInput)
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	records := []models.TaskRecord{
		{ID: "1", Depth: 0, Name: "Proyecto", Status: "En progreso", Start: "05/01/26", End: "16/01/26", PercentComplete: models.Percent(45), Duration: "10d"},
		{ID: "2", Depth: 1, Name: "Instalar", Assignee: "Ana", Predecessors: []string{"1"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records, CSVOptions{IndentNames: true, BOM: true}))
	assert.True(t, strings.HasPrefix(buf.String(), "\ufeffID,Nivel,Nombre de Tarea"))
	assert.Contains(t, buf.String(), "2,1,    Instalar,")

	got, err := ReadCSV(&buf, LevelRules{})
	require.NoError(t, err)
	if diff := cmp.Diff(records, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchSheet(t *testing.T) {
	body := "ID,Tarea,Estado\n" +
		"Fase,notas,\n" +
		"21,Ambiente DEV,Completo\n" +
		"22.0,Instalar,En progreso\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "csv", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	rules := LevelRules{RootIDs: []string{"21"}, Default: 1}
	got, err := FetchSheet(context.Background(), srv.Client(), srv.URL+"/export?format=csv", rules)
	require.NoError(t, err)

	want := []models.TaskRecord{
		{ID: "21", Depth: 0, Name: "Ambiente DEV", Status: "Completo"},
		{ID: "22", Depth: 1, Name: "Instalar", Status: "En progreso"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FetchSheet mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchSheet_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := FetchSheet(context.Background(), srv.Client(), srv.URL, LevelRules{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestExportURL(t *testing.T) {
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc/export?format=csv&gid=7", ExportURL("abc", "7"))
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc/export?format=csv", ExportURL("abc", ""))
}

func TestLoad_DispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "plan.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("ID,Nivel,Nombre\n1,0,Root\n2,1,A\n"), 0o644))

	got, err := Load(context.Background(), csvPath, Options{})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = Load(context.Background(), filepath.Join(dir, "plan.pdf"), Options{})
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}
