// Package service answers hierarchy queries over one loaded plan and exposes
// them over HTTP.
package service

import (
	"fmt"

	"github.com/fentz26/ganttline/internal/hierarchy"
	"github.com/fentz26/ganttline/internal/models"
	"github.com/fentz26/ganttline/internal/store"
)

// Service provides read-only queries over a loaded plan. The records are never
// modified after construction, so a Service is safe for concurrent use.
type Service struct {
	source  string
	records []models.TaskRecord
	index   *hierarchy.Index
	store   *store.Store
}

// NewService creates a query service. st may be nil when history is disabled.
func NewService(source string, records []models.TaskRecord, st *store.Store) *Service {
	return &Service{
		source:  source,
		records: records,
		index:   hierarchy.BuildIndex(records),
		store:   st,
	}
}

// Source returns where the plan was loaded from.
func (s *Service) Source() string { return s.source }

// Len returns the number of loaded records.
func (s *Service) Len() int { return len(s.records) }

// Index exposes the hierarchy index of the loaded plan.
func (s *Service) Index() *hierarchy.Index { return s.index }

// --- Task Queries ---

// Tasks returns the plan filtered to depths with ancestor context. No depths
// returns the whole plan.
func (s *Service) Tasks(depths []int) []models.TaskRecord {
	return hierarchy.FilterByDepth(s.records, depths)
}

// Task returns id with its ancestors and subtree, bounded to expand levels
// below id when expand is set.
func (s *Service) Task(id string, expand *int) ([]models.TaskRecord, error) {
	out := hierarchy.FilterByID(s.records, id, expand)
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return out, nil
}

// Ancestors returns the ancestor records of id, root first.
func (s *Service) Ancestors(id string) ([]models.TaskRecord, error) {
	pos, err := s.position(id)
	if err != nil {
		return nil, err
	}
	return s.pick(s.index.AncestorPositions(pos)), nil
}

// Children returns the direct children of id.
func (s *Service) Children(id string) ([]models.TaskRecord, error) {
	pos, err := s.position(id)
	if err != nil {
		return nil, err
	}
	return s.pick(s.index.ChildrenAt(pos)), nil
}

// Siblings returns the records sharing id's parent, id included.
func (s *Service) Siblings(id string) ([]models.TaskRecord, error) {
	pos, err := s.position(id)
	if err != nil {
		return nil, err
	}
	return s.pick(s.index.SiblingPositions(pos)), nil
}

// Descendants returns every record below id in pre-order.
func (s *Service) Descendants(id string) ([]models.TaskRecord, error) {
	pos, err := s.position(id)
	if err != nil {
		return nil, err
	}
	return s.pick(s.index.DescendantPositions(pos)), nil
}

func (s *Service) position(id string) (int, error) {
	pos, ok := s.index.Position(id)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return pos, nil
}

func (s *Service) pick(positions []int) []models.TaskRecord {
	out := make([]models.TaskRecord, len(positions))
	for i, p := range positions {
		out[i] = s.index.Record(p)
	}
	return out
}

// --- Snapshot History ---

// Snapshots lists stored snapshots, newest first.
func (s *Service) Snapshots(limit int) ([]models.SnapshotSummary, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	return s.store.ListSnapshots(limit)
}

// Snapshot retrieves a stored snapshot.
func (s *Service) Snapshot(id string) (*models.Snapshot, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	snap, err := s.store.GetSnapshot(id)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: snapshot %s", ErrNotFound, id)
	}
	return snap, nil
}
