// Package storage exports records as JSONL, imports saved record payloads,
// and maintains a rebuildable SQLite index for querying them.
package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matsen/citeparse/internal/record"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadAll reads all records from a JSONL file.
func ReadAll(path string) ([]*record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // Missing file reads as empty
		}
		return nil, fmt.Errorf("opening records file: %w", err)
	}
	defer f.Close()

	var recs []*record.Record
	scanner := bufio.NewScanner(f)
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		rec, err := record.Decode(bytes.NewReader(line))
		if err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		recs = append(recs, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading records file: %w", err)
	}
	return recs, nil
}

// Append adds a record to the end of a JSONL file.
func Append(path string, rec *record.Record) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening records file for append: %w", err)
	}
	defer f.Close()
	return writeLine(f, rec)
}

// WriteAll writes records to a JSONL file, replacing existing content.
func WriteAll(path string, recs []*record.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating records file: %w", err)
	}
	defer f.Close()
	return Write(f, recs)
}

// Write encodes records to w, one per line.
func Write(w io.Writer, recs []*record.Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range recs {
		if err := writeLine(bw, rec); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeLine(w io.Writer, rec *record.Record) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encoding record %s: %w", rec.Publication.ReferenceNumber, err)
	}
	return nil
}
