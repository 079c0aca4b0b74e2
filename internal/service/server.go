package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fentz26/ganttline/internal/hierarchy"
	"github.com/fentz26/ganttline/internal/models"
	"github.com/fentz26/ganttline/internal/store"
)

// Version is reported by /health; the CLI overrides it at startup.
var Version = "dev"

// Server provides the HTTP query API for ganttline.
type Server struct {
	service *Service
	store   *store.Store
	addr    string
	server  *http.Server
	logger  *zap.Logger
}

// NewServer creates a new HTTP server. st may be nil.
func NewServer(service *Service, st *store.Store, addr string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		service: service,
		store:   st,
		addr:    addr,
		logger:  logger,
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Task endpoints
	mux.HandleFunc("/tasks", s.handleTasks)
	mux.HandleFunc("/tasks/", s.handleTaskByID)

	// Snapshot history
	mux.HandleFunc("/snapshots", s.handleSnapshots)
	mux.HandleFunc("/snapshots/", s.handleSnapshotByID)

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	return mux
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	s.logger.Info("Starting query server",
		zap.String("addr", s.addr),
		zap.String("source", s.service.Source()),
		zap.Int("tasks", s.service.Len()),
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	OK      bool   `json:"ok"`
	DB      string `json:"db"`
	Version string `json:"version"`
	Time    string `json:"time"`
	Source  string `json:"source"`
	Tasks   int    `json:"tasks"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := HealthResponse{
		OK:      true,
		DB:      "disabled",
		Version: Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
		Source:  s.service.Source(),
		Tasks:   s.service.Len(),
	}
	status := http.StatusOK
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			resp.OK = false
			resp.DB = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			resp.DB = "ok"
		}
	}
	writeJSON(w, status, resp)
}

// handleTasks handles GET /tasks?depth=1,2
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var depths []int
	if raw := r.URL.Query().Get("depth"); raw != "" {
		op, err := hierarchy.ParseOp("depth=" + raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		depths = op.Depths
	}
	writeJSON(w, http.StatusOK, nonNil(s.service.Tasks(depths)))
}

// handleTaskByID handles /tasks/{id}/*
func (s *Server) handleTaskByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/tasks/")
	parts := strings.Split(path, "/")

	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "task id required", http.StatusBadRequest)
		return
	}

	taskID := parts[0]
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}

	var (
		tasks []models.TaskRecord
		err   error
	)
	switch action {
	case "":
		var expand *int
		if raw := r.URL.Query().Get("expand"); raw != "" {
			k, convErr := strconv.Atoi(raw)
			if convErr != nil || k < 0 {
				writeError(w, http.StatusBadRequest, errors.New("expand must be a non-negative integer"))
				return
			}
			expand = &k
		}
		tasks, err = s.service.Task(taskID, expand)
	case "ancestors":
		tasks, err = s.service.Ancestors(taskID)
	case "children":
		tasks, err = s.service.Children(taskID)
	case "siblings":
		tasks, err = s.service.Siblings(taskID)
	case "descendants":
		tasks, err = s.service.Descendants(taskID)
	default:
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(tasks))
}

// handleSnapshots handles GET /snapshots?limit=n
func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("limit must be an integer"))
			return
		}
		limit = n
	}
	list, err := s.service.Snapshots(limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if list == nil {
		list = []models.SnapshotSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

// handleSnapshotByID handles GET /snapshots/{id}
func (s *Server) handleSnapshotByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/snapshots/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	snap, err := s.service.Snapshot(id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTaskNotFound), errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, ErrHistoryDisabled):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		s.logger.Error("Query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func nonNil(tasks []models.TaskRecord) []models.TaskRecord {
	if tasks == nil {
		return []models.TaskRecord{}
	}
	return tasks
}
