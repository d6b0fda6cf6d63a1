// Package batch drives extraction over a citation list: it writes one record
// file per citation, logs failures, and keeps the bookkeeping needed to resume.
package batch

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/matsen/citeparse/internal/record"
)

// Store is a directory of record files named reference_NNNN.json.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created on first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the file path for a citation line.
func (s *Store) Path(lineNum int) string {
	return filepath.Join(s.dir, record.FileName(lineNum))
}

// Exists reports whether a record file for lineNum is present.
func (s *Store) Exists(lineNum int) bool {
	_, err := os.Stat(s.Path(lineNum))
	return err == nil
}

// Write stores rec under its reference number. The file appears whole or not at all.
func (s *Store) Write(rec *record.Record) error {
	lineNum, err := rec.LineNum()
	if err != nil {
		return err
	}
	data, err := record.Marshal(rec)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return writeFileAtomic(s.Path(lineNum), data)
}

// writeFileAtomic writes data to a temp file in the target directory and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", filepath.Base(path), err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("setting mode on %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Read loads the record for lineNum.
func (s *Store) Read(lineNum int) (*record.Record, error) {
	data, err := os.ReadFile(s.Path(lineNum))
	if err != nil {
		return nil, fmt.Errorf("reading record %d: %w", lineNum, err)
	}
	rec, err := record.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", record.FileName(lineNum), err)
	}
	return rec, nil
}

// Completed returns the set of line numbers that already have a record file.
// A missing directory is an empty set.
func (s *Store) Completed() (map[int]bool, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[int]bool{}, nil
		}
		return nil, fmt.Errorf("listing output directory: %w", err)
	}

	done := make(map[int]bool, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if n, ok := record.ParseFileName(e.Name()); ok {
			done[n] = true
		}
	}
	return done, nil
}

// Lines returns the completed line numbers in ascending order.
func (s *Store) Lines() ([]int, error) {
	done, err := s.Completed()
	if err != nil {
		return nil, err
	}
	lines := make([]int, 0, len(done))
	for n := range done {
		lines = append(lines, n)
	}
	sort.Ints(lines)
	return lines, nil
}

// List reads every record in line order.
func (s *Store) List() ([]*record.Record, error) {
	lines, err := s.Lines()
	if err != nil {
		return nil, err
	}
	recs := make([]*record.Record, 0, len(lines))
	for _, n := range lines {
		rec, err := s.Read(n)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
