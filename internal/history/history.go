// Package history records versions already submitted, so repeated runs
// do not re-notify the same release.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrHistoryCorrupted is returned when the history file cannot be parsed
	ErrHistoryCorrupted = errors.New("history file is corrupted")
	// ErrVersionNotInHistory is returned when a version is not recorded
	ErrVersionNotInHistory = errors.New("version not found in history")
)

// SubmissionStatus represents the outcome of a submission.
type SubmissionStatus string

const (
	// StatusSubmitted indicates the version was reported successfully
	StatusSubmitted SubmissionStatus = "submitted"
	// StatusFailed indicates the submission attempt failed
	StatusFailed SubmissionStatus = "failed"
)

// Submission is one recorded notification attempt.
type Submission struct {
	// Version is the full version string that was reported
	Version string `yaml:"version"`
	// Source names where the version was discovered
	Source string `yaml:"source"`
	// Label is the detected build label, empty when undetermined
	Label string `yaml:"label,omitempty"`
	// Status records the submission outcome
	Status SubmissionStatus `yaml:"status"`
	// SubmittedAt is when the submission was attempted
	SubmittedAt time.Time `yaml:"submitted_at"`
	// Error contains the failure message when Status is failed
	Error string `yaml:"error,omitempty"`
}

// historyFile is the YAML structure stored on disk
type historyFile struct {
	Submissions map[string]Submission `yaml:"submissions"`
}

// History manages the submission record. It persists to disk and
// supports concurrent access.
type History struct {
	submissions map[string]Submission
	path        string
	mu          sync.RWMutex
	nowFunc     func() time.Time
}

// Option is a functional option for configuring History
type Option func(*History)

// WithNowFunc sets a custom time function for testing
func WithNowFunc(fn func() time.Time) Option {
	return func(h *History) {
		h.nowFunc = fn
	}
}

// New creates or loads the submission history under configDir.
// A missing file starts an empty history; a corrupted file is
// discarded and overwritten on the next save.
func New(configDir string, opts ...Option) (*History, error) {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	h := &History{
		submissions: make(map[string]Submission),
		path:        filepath.Join(configDir, "submissions.yaml"),
		nowFunc:     time.Now,
	}

	for _, opt := range opts {
		opt(h)
	}

	if err := h.load(); err != nil {
		if !os.IsNotExist(err) {
			h.submissions = make(map[string]Submission)
		}
	}

	return h, nil
}

func (h *History) load() error {
	data, err := os.ReadFile(h.path)
	if err != nil {
		return err
	}

	var hf historyFile
	if err := yaml.Unmarshal(data, &hf); err != nil {
		return fmt.Errorf("%w: %v", ErrHistoryCorrupted, err)
	}

	if hf.Submissions != nil {
		h.submissions = hf.Submissions
	}

	return nil
}

// Add records a submission, keyed by version. An existing record for
// the same version is overwritten, so a failed attempt can be upgraded
// to submitted on retry. Saves to disk after adding.
func (h *History) Add(s Submission) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = h.nowFunc()
	}
	if s.Status != StatusSubmitted && s.Status != StatusFailed {
		s.Status = StatusSubmitted
	}

	h.submissions[s.Version] = s
	return h.saveUnsafe()
}

// Get retrieves a submission by version.
func (h *History) Get(version string) (*Submission, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s, exists := h.submissions[version]
	if !exists {
		return nil, false
	}
	return &s, true
}

// Has reports whether a version was already submitted successfully.
// Failed attempts do not count; the caller is expected to retry them.
func (h *History) Has(version string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s, exists := h.submissions[version]
	return exists && s.Status == StatusSubmitted
}

// List returns all submissions, newest first.
func (h *History) List() []Submission {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Submission, 0, len(h.submissions))
	for _, s := range h.submissions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out
}

// Len returns the number of recorded submissions.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.submissions)
}

// Delete removes a version record. Saves to disk after deletion.
func (h *History) Delete(version string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.submissions[version]; !exists {
		return ErrVersionNotInHistory
	}
	delete(h.submissions, version)
	return h.saveUnsafe()
}

// Clear removes all records. Saves to disk after clearing.
func (h *History) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.submissions = make(map[string]Submission)
	return h.saveUnsafe()
}

// Save persists the history to disk.
func (h *History) Save() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.saveUnsafe()
}

// saveUnsafe writes the file without locking. Caller must hold the
// write lock. Writes go to a temp file first, then rename.
func (h *History) saveUnsafe() error {
	hf := historyFile{
		Submissions: h.submissions,
	}

	data, err := yaml.Marshal(&hf)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tmpPath := h.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}

	if err := os.Rename(tmpPath, h.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename history file: %w", err)
	}

	return nil
}
