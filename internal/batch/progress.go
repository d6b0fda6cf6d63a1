package batch

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func newRunID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Progress is the resume state of a batch run, persisted as JSON.
type Progress struct {
	RunID             string    `json:"run_id"`
	LastProcessedLine int       `json:"last_processed_line"`
	TotalProcessed    int       `json:"total_processed"`
	TotalErrors       int       `json:"total_errors"`
	StartedAt         time.Time `json:"started_at"`
	LastUpdate        time.Time `json:"last_update"`

	path string
}

// NewProgress returns fresh state that will be saved to path.
func NewProgress(path string) *Progress {
	now := time.Now().UTC()
	return &Progress{
		RunID:      newRunID(now),
		StartedAt:  now,
		LastUpdate: now,
		path:       path,
	}
}

// LoadProgress reads the state at path, or returns fresh state when the file does not exist.
func LoadProgress(path string) (*Progress, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewProgress(path), nil
		}
		return nil, fmt.Errorf("reading progress file: %w", err)
	}

	var p Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing progress file %s: %w", path, err)
	}
	p.path = path
	if p.RunID == "" {
		p.RunID = newRunID(time.Now())
	}
	return &p, nil
}

// Path returns where the state is saved.
func (p *Progress) Path() string { return p.path }

// Observe folds one finished citation into the state. lineNum is the highest
// line up to which every citation has finished; it never moves backwards.
func (p *Progress) Observe(lineNum int, written, failed bool) {
	if lineNum > p.LastProcessedLine {
		p.LastProcessedLine = lineNum
	}
	if written {
		p.TotalProcessed++
	}
	if failed {
		p.TotalErrors++
	}
}

// Save writes the state atomically.
func (p *Progress) Save() error {
	if p.path == "" {
		return errors.New("progress has no file path")
	}
	p.LastUpdate = time.Now().UTC()
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding progress: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("creating progress directory: %w", err)
	}
	return writeFileAtomic(p.path, append(data, '\n'))
}

// Reset deletes the state file and returns fresh state with a new run id.
func (p *Progress) Reset() (*Progress, error) {
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("removing progress file: %w", err)
	}
	return NewProgress(p.path), nil
}
