package record

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	rec := New(7)

	if rec.Publication.ReferenceNumber != "7" {
		t.Errorf("ReferenceNumber = %q, want \"7\"", rec.Publication.ReferenceNumber)
	}
	if n, err := rec.LineNum(); err != nil || n != 7 {
		t.Errorf("LineNum() = %d, %v; want 7", n, err)
	}
	if rec.Publication.PublicationType != Monograph {
		t.Errorf("PublicationType = %q, want %q", rec.Publication.PublicationType, Monograph)
	}
	if rec.Publication.Auteurs == nil || len(rec.Publication.Auteurs) != 0 {
		t.Errorf("Auteurs = %v, want empty non-nil", rec.Publication.Auteurs)
	}
	if rec.Remarks != nil {
		t.Errorf("Remarks = %v, want nil", rec.Remarks)
	}
}

func TestEncode_FieldOrderAndNulls(t *testing.T) {
	rec := New(3)
	rec.Publication.Title = String("Cartulaire de l'abbaye de Cluny")

	data, err := Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	out := string(data)

	order := []string{
		`"publication"`, `"reference_number": "3"`, `"publication_type"`, `"title"`, `"auteurs": []`,
		`"place_of_publication": null`, `"publisher"`, `"publication_dates"`, `"volume"`, `"tome"`,
		`"pages"`, `"series"`, `"journal_title"`, `"journal_volume"`, `"journal_issue"`,
		`"container_title"`, `"container_editors": []`,
		`"content"`, `"main_institution": null`, `"mentioned_place"`, `"region"`, `"country"`,
		`"institution_type"`, `"religious_order"`, `"temporal_coverage"`, `"document_type"`,
		`"remarks": null`,
	}
	last := -1
	for _, key := range order {
		idx := strings.Index(out, key)
		if idx < 0 {
			t.Fatalf("output missing %s:\n%s", key, out)
		}
		if idx <= last {
			t.Errorf("%s out of order", key)
		}
		last = idx
	}

	if !strings.Contains(out, "l'abbaye") {
		t.Errorf("apostrophe should be literal:\n%s", out)
	}
}

func TestEncode_NonASCIILiteral(t *testing.T) {
	rec := New(1)
	rec.Publication.PlaceOfPublication = String("Liège")
	rec.Publication.Publisher = String("Brepols & Fils")

	var buf bytes.Buffer
	if err := Encode(&buf, rec); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Liège") {
		t.Errorf("expected literal Liège in %s", out)
	}
	if !strings.Contains(out, "Brepols & Fils") {
		t.Errorf("expected unescaped ampersand in %s", out)
	}
	if !strings.Contains(out, "\n  \"publication\": {") {
		t.Errorf("expected 2-space indentation in %s", out)
	}
}

func TestMarshal_NilListsBecomeEmpty(t *testing.T) {
	rec := &Record{Publication: Publication{ReferenceNumber: "1", PublicationType: Article}}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"auteurs":[]`)) || !bytes.Contains(data, []byte(`"container_editors":[]`)) {
		t.Errorf("nil lists should encode as []: %s", data)
	}
}

func TestDecode_RoundTripsEncode(t *testing.T) {
	rec := New(12)
	rec.Publication.PublicationType = Article
	rec.Publication.Auteurs = []string{"DUPONT Jean", "MARTIN Pierre"}
	rec.Content.Country = String("France")

	data, err := Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	again, err := Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, again) {
		t.Errorf("re-encoded record differs:\n%s\nvs\n%s", data, again)
	}
}

func TestDecode_MissingListsNormalized(t *testing.T) {
	got, err := Decode(strings.NewReader(`{"publication":{"reference_number":"4","publication_type":"thesis"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if got.Publication.Auteurs == nil || got.Publication.ContainerEditors == nil {
		t.Error("Decode() should normalize missing lists to empty slices")
	}
}

func TestNormalizePublicationType(t *testing.T) {
	tests := []struct {
		in     string
		want   PublicationType
		wantOK bool
	}{
		{"monograph", Monograph, true},
		{"book", Monograph, true},
		{"Article", Article, true},
		{"chapter", BookChapter, true},
		{"book_chapter", BookChapter, true},
		{" thesis ", Thesis, true},
		{"pamphlet", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizePublicationType(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizePublicationType(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestStringAndValue(t *testing.T) {
	if String("") != nil {
		t.Error("String(\"\") should be nil")
	}
	if Value(String("x")) != "x" {
		t.Error("Value(String(\"x\")) should be x")
	}
	if Value(nil) != "" {
		t.Error("Value(nil) should be empty")
	}
}

func TestLineNum_Invalid(t *testing.T) {
	rec := New(1)
	rec.Publication.ReferenceNumber = "abc"
	if _, err := rec.LineNum(); err == nil {
		t.Error("LineNum() should fail for non-numeric reference_number")
	}
}
