// Package snapshot serializes filtered task lists for the renderer.
//
// A snapshot is a JSON document carrying the tasks in order along with the
// source and pipeline that produced them. Reading a snapshot back yields the
// identical record sequence.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fentz26/ganttline/internal/models"
)

// Version is the snapshot document version written by this package.
const Version = 1

// ErrUnsupportedVersion is returned when a snapshot was written by a newer tool.
var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

// New builds a snapshot of tasks stamped with the current time.
func New(source, pipeline string, tasks []models.TaskRecord) *models.Snapshot {
	if tasks == nil {
		tasks = []models.TaskRecord{}
	}
	return &models.Snapshot{
		Version:     Version,
		GeneratedAt: time.Now().UTC(),
		Source:      source,
		Pipeline:    pipeline,
		Tasks:       tasks,
	}
}

// Encode writes snap as indented JSON.
func Encode(w io.Writer, snap *models.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// Decode reads a snapshot document.
func Decode(r io.Reader) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, snap.Version)
	}
	if snap.Tasks == nil {
		snap.Tasks = []models.TaskRecord{}
	}
	return &snap, nil
}

// WriteFile writes snap to path, creating parent directories. The file is
// replaced atomically so a renderer never reads a partial snapshot.
func WriteFile(path string, snap *models.Snapshot) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, snap); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename snapshot file: %w", err)
	}
	return nil
}

// ReadFile reads the snapshot at path.
func ReadFile(path string) (*models.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
