// Package audit records filter and render runs in the history store.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/fentz26/ganttline/internal/models"
	"github.com/fentz26/ganttline/internal/store"
)

// Actions recorded by the CLI.
const (
	ActionFilter  = "filter"
	ActionSelect  = "select"
	ActionRender  = "render"
	ActionConvert = "convert"
)

// Outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeEmpty  = "empty"
	OutcomeFailed = "failed"
)

// Inputs identify one run so identical runs hash identically.
type Inputs struct {
	Source   string   `json:"source"`
	Pipeline string   `json:"pipeline,omitempty"`
	IDs      []string `json:"ids,omitempty"`
	Depth    *int     `json:"depth,omitempty"`
	Expand   bool     `json:"expand,omitempty"`
}

// DecisionWriter writes decision records for audit trails.
type DecisionWriter struct {
	store *store.Store
}

// NewDecisionWriter creates a new decision writer.
func NewDecisionWriter(s *store.Store) *DecisionWriter {
	return &DecisionWriter{store: s}
}

// Record writes a decision entry for one run.
func (w *DecisionWriter) Record(action string, inputs Inputs, outcome, snapshotID, details string) (*models.Decision, error) {
	return w.store.WriteDecision(action, HashInputs(inputs), outcome, snapshotID, details)
}

// HashInputs creates a SHA256 hash of the inputs for reproducibility.
func HashInputs(inputs interface{}) string {
	data, err := json.Marshal(inputs)
	if err != nil {
		return "hash_error"
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
