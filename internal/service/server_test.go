package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/fentz26/ganttline/internal/models"
	"github.com/fentz26/ganttline/internal/store"
)

func testPlan() []models.TaskRecord {
	return []models.TaskRecord{
		{ID: "1", Depth: 0, Name: "Root"},
		{ID: "2", Depth: 1, Name: "A"},
		{ID: "3", Depth: 2, Name: "A1"},
		{ID: "4", Depth: 2, Name: "A2"},
		{ID: "5", Depth: 1, Name: "B"},
	}
}

func taskIDs(tasks []models.TaskRecord) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func get(t *testing.T, s *Server, target string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w.Result()
}

func decodeTasks(t *testing.T, resp *http.Response) []models.TaskRecord {
	t.Helper()
	var tasks []models.TaskRecord
	if err := json.NewDecoder(resp.Body).Decode(&tasks); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return tasks
}

func TestHealthEndpoint_OK(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()

	resp := get(t, s, "/health")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if !health.OK {
		t.Error("Expected health.OK to be true")
	}
	if health.DB != "ok" {
		t.Errorf("Expected DB status 'ok', got '%s'", health.DB)
	}
	if health.Version == "" {
		t.Error("Expected version to be set")
	}
	if health.Tasks != 5 {
		t.Errorf("Expected 5 tasks, got %d", health.Tasks)
	}
}

func TestHealthEndpoint_MethodNotAllowed(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	w := httptest.NewRecorder()
	s.handleHealth(w, req)

	if w.Result().StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Result().StatusCode)
	}
}

func TestHealthEndpoint_DBError(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	server := NewServer(NewService("plan.xlsx", testPlan(), st), st, "127.0.0.1:0", nil)

	// Close the store to simulate DB error
	st.Close()

	resp := get(t, server, "/health")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", resp.StatusCode)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if health.OK {
		t.Error("Expected health.OK to be false when DB is down")
	}
}

func TestTasksEndpoint_DepthFilter(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()

	resp := get(t, s, "/tasks?depth=2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	got := taskIDs(decodeTasks(t, resp))
	if want := []string{"1", "2", "3", "4"}; !equalIDs(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	resp = get(t, s, "/tasks")
	if got := taskIDs(decodeTasks(t, resp)); len(got) != 5 {
		t.Errorf("Expected full plan, got %v", got)
	}

	resp = get(t, s, "/tasks?depth=x")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
}

func TestTasksEndpoint_NoMatchIsEmptyArray(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()

	resp := get(t, s, "/tasks?depth=7")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if got := decodeTasks(t, resp); got == nil || len(got) != 0 {
		t.Errorf("Expected empty array, got %v", got)
	}
}

func TestTaskByID(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()

	tests := []struct {
		target string
		want   []string
	}{
		{"/tasks/2", []string{"1", "2", "3", "4"}},
		{"/tasks/1?expand=1", []string{"1", "2", "5"}},
		{"/tasks/3/ancestors", []string{"1", "2"}},
		{"/tasks/2/children", []string{"3", "4"}},
		{"/tasks/3/siblings", []string{"3", "4"}},
		{"/tasks/1/descendants", []string{"2", "3", "4", "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			resp := get(t, s, tt.target)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", resp.StatusCode)
			}
			if got := taskIDs(decodeTasks(t, resp)); !equalIDs(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTaskByID_Errors(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()

	resp := get(t, s, "/tasks/999")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Expected JSON error body: %v", err)
	}
	if body.Error == "" {
		t.Error("Expected error message")
	}

	if resp := get(t, s, "/tasks/2?expand=-1"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
	if resp := get(t, s, "/tasks/2/cousins"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
	if resp := get(t, s, "/tasks/"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
}

func TestSnapshotEndpoints(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()

	sum, err := s.store.SaveSnapshot(&models.Snapshot{
		Version:     1,
		GeneratedAt: time.Now().UTC(),
		Source:      "plan.xlsx",
		Pipeline:    "depth=1",
		Tasks:       testPlan()[:2],
	})
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	resp := get(t, s, "/snapshots")
	var list []models.SnapshotSummary
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(list) != 1 || list[0].ID != sum.ID {
		t.Errorf("Unexpected snapshot list: %+v", list)
	}

	resp = get(t, s, "/snapshots/"+sum.ID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	var snap models.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(snap.Tasks) != 2 {
		t.Errorf("Expected 2 tasks, got %d", len(snap.Tasks))
	}

	if resp := get(t, s, "/snapshots/missing"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}

func TestSnapshotEndpoints_HistoryDisabled(t *testing.T) {
	s := NewServer(NewService("plan.xlsx", testPlan(), nil), nil, "127.0.0.1:0", nil)

	if resp := get(t, s, "/snapshots"); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", resp.StatusCode)
	}

	resp := get(t, s, "/health")
	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !health.OK || health.DB != "disabled" {
		t.Errorf("Unexpected health without history: %+v", health)
	}
}

func newTestServer(t *testing.T) (*Server, func()) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	st, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	service := NewService("plan.xlsx", testPlan(), st)
	server := NewServer(service, st, "127.0.0.1:0", nil)

	cleanup := func() {
		st.Close()
	}

	return server, cleanup
}
