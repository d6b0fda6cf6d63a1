package batch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/citeparse/internal/record"
)

func TestStore_WriteReadRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "json"))

	rec := record.New(7)
	rec.Publication.Title = record.String("Histoire de Liège & de Namur")
	rec.Publication.Auteurs = []string{"DUPONT Jean"}

	if err := store.Write(rec); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !store.Exists(7) {
		t.Fatal("Exists(7) = false after Write")
	}
	if store.Exists(8) {
		t.Error("Exists(8) = true for a missing record")
	}

	data, err := os.ReadFile(filepath.Join(store.Dir(), "reference_0007.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Histoire de Liège & de Namur") {
		t.Errorf("file should keep non-ASCII and & literal:\n%s", data)
	}
	if !strings.HasPrefix(string(data), "{\n  \"publication\": {\n    \"reference_number\": \"7\"") {
		t.Errorf("unexpected layout:\n%s", data)
	}

	got, err := store.Read(7)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if record.Value(got.Publication.Title) != "Histoire de Liège & de Namur" {
		t.Errorf("Title = %q", record.Value(got.Publication.Title))
	}
}

func TestStore_WriteLeavesNoTempFiles(t *testing.T) {
	store := NewStore(t.TempDir())
	for _, n := range []int{1, 2, 3} {
		if err := store.Write(record.New(n)); err != nil {
			t.Fatal(err)
		}
	}
	// Overwrite is allowed and still atomic.
	if err := store.Write(record.New(2)); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory holds %v, want exactly three record files", names)
	}
}

func TestStore_WriteRejectsBadReferenceNumber(t *testing.T) {
	store := NewStore(t.TempDir())
	rec := record.New(1)
	rec.Publication.ReferenceNumber = "abc"
	if err := store.Write(rec); err == nil {
		t.Error("Write() should reject a non-numeric reference_number")
	}
}

func TestStore_CompletedAndList(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	for _, n := range []int{12, 3, 1500} {
		if err := store.Write(record.New(n)); err != nil {
			t.Fatal(err)
		}
	}
	// Files that are not records are ignored.
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "reference_abc.json"), []byte("{}"), 0644)
	os.Mkdir(filepath.Join(dir, "reference_0099.json.d"), 0755)

	done, err := store.Completed()
	if err != nil {
		t.Fatal(err)
	}
	if len(done) != 3 || !done[3] || !done[12] || !done[1500] {
		t.Errorf("Completed() = %v", done)
	}

	recs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	var refs []string
	for _, r := range recs {
		refs = append(refs, r.Publication.ReferenceNumber)
	}
	if strings.Join(refs, ",") != "3,12,1500" {
		t.Errorf("List() order = %v", refs)
	}
}

func TestStore_MissingDirectory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent"))
	done, err := store.Completed()
	if err != nil {
		t.Fatalf("Completed() error = %v", err)
	}
	if len(done) != 0 {
		t.Errorf("Completed() = %v, want empty", done)
	}
	recs, err := store.List()
	if err != nil || len(recs) != 0 {
		t.Errorf("List() = %v, %v", recs, err)
	}
}
