package batch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/matsen/citeparse/internal/assemble"
	"github.com/matsen/citeparse/internal/remote"
)

func TestProgress_LoadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	p, err := LoadProgress(path)
	if err != nil {
		t.Fatalf("LoadProgress() error = %v", err)
	}
	if _, err := ulid.Parse(p.RunID); err != nil {
		t.Errorf("RunID %q is not a ULID: %v", p.RunID, err)
	}
	if p.LastProcessedLine != 0 || p.TotalProcessed != 0 {
		t.Errorf("fresh progress = %+v", p)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("LoadProgress() should not create the file")
	}
}

func TestProgress_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "progress.json")
	p := NewProgress(path)
	p.Observe(5, true, false)
	p.Observe(3, false, true)
	p.Observe(9, true, false)
	if err := p.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadProgress(path)
	if err != nil {
		t.Fatalf("LoadProgress() error = %v", err)
	}
	if loaded.RunID != p.RunID {
		t.Errorf("RunID = %q, want %q", loaded.RunID, p.RunID)
	}
	if loaded.LastProcessedLine != 9 || loaded.TotalProcessed != 2 || loaded.TotalErrors != 1 {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.LastUpdate.Before(loaded.StartedAt) {
		t.Error("LastUpdate before StartedAt")
	}

	data, _ := os.ReadFile(path)
	for _, key := range []string{`"run_id"`, `"last_processed_line": 9`, `"total_processed": 2`, `"total_errors": 1`, `"started_at"`, `"last_update"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("progress file missing %s:\n%s", key, data)
		}
	}
}

func TestProgress_Reset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	p := NewProgress(path)
	p.Observe(40, true, false)
	if err := p.Save(); err != nil {
		t.Fatal(err)
	}

	fresh, err := p.Reset()
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if fresh.LastProcessedLine != 0 || fresh.RunID == p.RunID {
		t.Errorf("Reset() = %+v", fresh)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("Reset() should remove the file")
	}
	// Resetting twice is fine.
	if _, err := fresh.Reset(); err != nil {
		t.Errorf("second Reset() error = %v", err)
	}
}

func TestProgress_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	os.WriteFile(path, []byte("{not json"), 0644)
	if _, err := LoadProgress(path); err == nil {
		t.Error("LoadProgress() should fail on corrupt JSON")
	}
}

func TestFailureLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")
	log := NewFailureLog(path)
	log.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }

	long := strings.Repeat("é", 250)
	if err := log.Append(12, remote.KindMalformed, errors.New("not JSON"), "DUPONT Jean, Histoire"); err != nil {
		t.Fatal(err)
	}
	if err := log.Append(13, KindAssemblyFault, errors.New("boom"), long); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "[2025-03-01T10:00:00Z] Line 12 (malformed_response): not JSON\n" +
		"  Reference: DUPONT Jean, Histoire\n\n" +
		"[2025-03-01T10:00:00Z] Line 13 (assembly_fault): boom\n" +
		"  Reference: " + strings.Repeat("é", 200) + "...\n\n"
	if string(data) != want {
		t.Errorf("log =\n%s\nwant\n%s", data, want)
	}
}

func TestFailureKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{remote.ErrRateLimited, remote.KindRateLimited},
		{&remote.APIError{StatusCode: 500}, remote.KindTransport},
		{remote.ErrMalformedResponse, remote.KindMalformed},
		{&assemble.FaultError{LineNum: 1, Pass: "title", Value: "x"}, KindAssemblyFault},
		{errors.New("something else"), KindError},
	}
	for _, tt := range tests {
		if got := FailureKind(tt.err); got != tt.want {
			t.Errorf("FailureKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
