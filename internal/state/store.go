// Package state persists per-step outcomes so interrupted or failed
// runs can resume without redoing satisfied work.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	proverr "provision/internal/errors"
)

// Status classifies the outcome of one action.
type Status string

const (
	StatusSkipped   Status = "skipped"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusUnreached Status = "unreached"

	// StatusWouldApply only appears in dry-run output; it is never
	// persisted.
	StatusWouldApply Status = "would-apply"
)

// StepResult is one append-only log entry.
type StepResult struct {
	Action    string        `json:"action"`
	Status    Status        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// RunRecord is the ordered sequence of StepResults for one invocation,
// keyed by the execution-context fingerprint.
type RunRecord struct {
	RunID       string       `json:"run_id"`
	Fingerprint string       `json:"fingerprint"`
	CreatedAt   time.Time    `json:"created_at"`
	Results     []StepResult `json:"results"`
}

// StatusOf returns the recorded status for an action, or "" if the
// record has no entry for it.
func (r *RunRecord) StatusOf(action string) Status {
	if r == nil {
		return ""
	}
	for _, res := range r.Results {
		if res.Action == action {
			return res.Status
		}
	}
	return ""
}

// Counts tallies results per status.
func (r *RunRecord) Counts() map[Status]int {
	counts := map[Status]int{}
	if r == nil {
		return counts
	}
	for _, res := range r.Results {
		counts[res.Status]++
	}
	return counts
}

// Store keeps one record per fingerprint under <dir>/runs.
type Store struct {
	dir     string
	current map[string]*RunRecord
}

// New creates a Store rooted at the provisioning-state directory.
func New(dir string) *Store {
	return &Store{dir: dir, current: map[string]*RunRecord{}}
}

func (s *Store) path(fingerprint string) string {
	return filepath.Join(s.dir, "runs", fingerprint+".json")
}

// Load returns the last record for a fingerprint. A missing record
// yields (nil, nil). A corrupt record yields (nil, StateCorrupt);
// callers degrade that to "no prior run" with a warning.
func (s *Store) Load(fingerprint string) (*RunRecord, error) {
	data, err := os.ReadFile(s.path(fingerprint))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, proverr.Newf(proverr.StateCorrupt, "reading run record: %v", err)
	}
	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, proverr.Newf(proverr.StateCorrupt, "parsing run record %s: %v", s.path(fingerprint), err)
	}
	if rec.Fingerprint != fingerprint {
		return nil, proverr.Newf(proverr.StateCorrupt,
			"run record %s carries fingerprint %q", s.path(fingerprint), rec.Fingerprint)
	}
	return &rec, nil
}

// Begin starts a fresh record for this invocation, replacing any prior
// one on the first Append.
func (s *Store) Begin(fingerprint, runID string) {
	s.current[fingerprint] = &RunRecord{
		RunID:       runID,
		Fingerprint: fingerprint,
		CreatedAt:   time.Now().UTC(),
	}
}

// Append adds a result to the current record and flushes it to disk, so
// a crash mid-run leaves a recoverable prefix.
func (s *Store) Append(fingerprint string, result StepResult) error {
	rec, ok := s.current[fingerprint]
	if !ok {
		return proverr.Newf(proverr.Internal, "append before Begin for fingerprint %s", fingerprint)
	}
	rec.Results = append(rec.Results, result)
	return s.flush(rec)
}

// Clear removes the recorded state for a fingerprint.
func (s *Store) Clear(fingerprint string) error {
	delete(s.current, fingerprint)
	err := os.Remove(s.path(fingerprint))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clearing run record: %w", err)
	}
	return nil
}

// flush writes the record atomically: temp file, then rename.
func (s *Store) flush(rec *RunRecord) error {
	dir := filepath.Join(s.dir, "runs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run record: %w", err)
	}
	path := s.path(rec.Fingerprint)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing run record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing run record: %w", err)
	}
	return nil
}
