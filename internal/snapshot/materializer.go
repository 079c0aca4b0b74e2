package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/fentz26/ganttline/internal/models"
)

// TempMaterializer hands pipeline stages off through snapshot files in Dir.
// Every file it writes is removed by Close.
type TempMaterializer struct {
	Dir string

	files []string
}

// NewTempMaterializer writes stage files under dir, or os.TempDir when empty.
func NewTempMaterializer(dir string) *TempMaterializer {
	if dir == "" {
		dir = os.TempDir()
	}
	return &TempMaterializer{Dir: dir}
}

// Materialize writes records to a fresh snapshot file and reads them back.
func (m *TempMaterializer) Materialize(records []models.TaskRecord, stage int) ([]models.TaskRecord, error) {
	path := filepath.Join(m.Dir, fmt.Sprintf("ganttline-stage%d-%s.json", stage, uuid.New().String()))
	m.files = append(m.files, path)

	if err := WriteFile(path, New("", fmt.Sprintf("stage %d", stage), records)); err != nil {
		return nil, fmt.Errorf("materialize stage %d: %w", stage, err)
	}
	snap, err := ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("materialize stage %d: %w", stage, err)
	}
	return snap.Tasks, nil
}

// Files lists the stage files written so far.
func (m *TempMaterializer) Files() []string {
	return append([]string(nil), m.files...)
}

// Close removes every stage file.
func (m *TempMaterializer) Close() error {
	var errs []error
	for _, f := range m.files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	m.files = nil
	return errors.Join(errs...)
}
