package assemble

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/matsen/citeparse/internal/citation"
	"github.com/matsen/citeparse/internal/extract"
	"github.com/matsen/citeparse/internal/record"
)

func assertField(t *testing.T, name string, got *string, want string) {
	t.Helper()
	if want == "" {
		if got != nil {
			t.Errorf("%s = %q, want null", name, *got)
		}
		return
	}
	if got == nil || *got != want {
		t.Errorf("%s = %v, want %q", name, record.Value(got), want)
	}
}

func TestAssemble_Monograph(t *testing.T) {
	rec, err := Assemble(1, "DUPONT Jean, Histoire de l'abbaye de Cluny, Paris, Fayard, 1998")
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	p, c := rec.Publication, rec.Content
	if p.ReferenceNumber != "1" {
		t.Errorf("ReferenceNumber = %q, want 1", p.ReferenceNumber)
	}
	if p.PublicationType != record.Monograph {
		t.Errorf("PublicationType = %q, want monograph", p.PublicationType)
	}
	if !reflect.DeepEqual(p.Auteurs, []string{"DUPONT Jean"}) {
		t.Errorf("Auteurs = %q", p.Auteurs)
	}
	assertField(t, "title", p.Title, "Histoire de l'abbaye de Cluny")
	assertField(t, "place_of_publication", p.PlaceOfPublication, "Paris")
	assertField(t, "publisher", p.Publisher, "Fayard")
	assertField(t, "publication_dates", p.PublicationDates, "1998")
	assertField(t, "journal_title", p.JournalTitle, "")
	assertField(t, "container_title", p.ContainerTitle, "")

	assertField(t, "main_institution", c.MainInstitution, "abbaye de Cluny")
	assertField(t, "mentioned_place", c.MentionedPlace, "Cluny")
	assertField(t, "institution_type", c.InstitutionType, record.InstitutionAbbey)
	assertField(t, "country", c.Country, "France")
	assertField(t, "region", c.Region, "Bourgogne")
	assertField(t, "religious_order", c.ReligiousOrder, "Cluniac")
	assertField(t, "document_type", c.DocumentType, record.DocumentHistory)
	if rec.Remarks != nil {
		t.Errorf("Remarks = %q, want null", *rec.Remarks)
	}
}

func TestAssemble_Article(t *testing.T) {
	rec, err := Assemble(2, "MARTIN Paul, 'Les chartes de Saint-Martin', dans: Revue Historique, 45 (1990), p. 12-34")
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	p, c := rec.Publication, rec.Content
	if p.PublicationType != record.Article {
		t.Errorf("PublicationType = %q, want article", p.PublicationType)
	}
	assertField(t, "title", p.Title, "Les chartes de Saint-Martin")
	assertField(t, "pages", p.Pages, "p. 12-34")
	assertField(t, "publication_dates", p.PublicationDates, "1990")
	assertField(t, "journal_title", p.JournalTitle, "Revue Historique")
	assertField(t, "journal_volume", p.JournalVolume, "45")
	assertField(t, "document_type", c.DocumentType, record.DocumentCharter)
	if len(p.ContainerEditors) != 0 {
		t.Errorf("ContainerEditors = %q, want empty", p.ContainerEditors)
	}
}

func TestAssemble_BookChapter(t *testing.T) {
	rec, err := Assemble(3, "DUPONT Jean, 'Les moines de Cluny', in: MARTIN Paul (éd.), Histoire des abbayes, Paris, Fayard, 1990")
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	p := rec.Publication
	if p.PublicationType != record.BookChapter {
		t.Errorf("PublicationType = %q, want book_chapter", p.PublicationType)
	}
	assertField(t, "container_title", p.ContainerTitle, "Histoire des abbayes")
	if !reflect.DeepEqual(p.ContainerEditors, []string{"MARTIN Paul"}) {
		t.Errorf("ContainerEditors = %q", p.ContainerEditors)
	}
	assertField(t, "journal_title", p.JournalTitle, "")
}

func TestAssemble_NoAuthorRun(t *testing.T) {
	rec, err := Assemble(4, "le cartulaire de l'abbaye de Gorze, Metz, 1900")
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if rec.Publication.Auteurs == nil || len(rec.Publication.Auteurs) != 0 {
		t.Errorf("Auteurs = %#v, want empty list", rec.Publication.Auteurs)
	}
	assertField(t, "title", rec.Publication.Title, "")
	assertField(t, "volume", rec.Publication.Volume, "")
	assertField(t, "document_type", rec.Content.DocumentType, record.DocumentCartulary)
}

func TestAssemble_TitleFallback(t *testing.T) {
	text := "le cartulaire de l'abbaye de Gorze, Metz, 1900"

	rec, err := New(WithTitleFallback(true)).Assemble(4, text)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	assertField(t, "title", rec.Publication.Title, "le cartulaire de l'abbaye de Gorze")
}

func TestAssemble_Gazetteer(t *testing.T) {
	g := extract.Gazetteer{"Gorze": {Region: "Lorraine", Order: "Benedictine", Country: "France"}}
	rec, err := New(WithGazetteer(g)).Assemble(5, "Cartulaire de l'abbaye de Gorze, Metz, 1900")
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	assertField(t, "region", rec.Content.Region, "Lorraine")
	assertField(t, "religious_order", rec.Content.ReligiousOrder, "Benedictine")
	// Keyword scan wins over the gazetteer: "abbaye" is a French cue.
	assertField(t, "country", rec.Content.Country, "France")
}

func TestAssemble_Empty(t *testing.T) {
	for _, text := range []string{"", "   ", "\t"} {
		rec, err := Assemble(7, text)
		if !errors.Is(err, citation.ErrEmptyCitation) {
			t.Errorf("Assemble(%q) error = %v, want ErrEmptyCitation", text, err)
		}
		if rec != nil {
			t.Errorf("Assemble(%q) returned a record", text)
		}
	}
}

func TestAssemble_Idempotent(t *testing.T) {
	texts := []string{
		"DUPONT Jean, Histoire de l'abbaye de Cluny, Paris, Fayard, 1998",
		"MARTIN Paul, 'Les chartes de Saint-Martin', dans: Revue Historique, 45 (1990), p. 12-34",
		"Chartes de l'abbaye d'Orval (XIIe-XIIIe siècles), Bruxelles, 1900 (Collection de chroniques belges)",
	}
	for i, text := range texts {
		a, err := Assemble(i+1, text)
		if err != nil {
			t.Fatal(err)
		}
		b, err := Assemble(i+1, text)
		if err != nil {
			t.Fatal(err)
		}
		ja, _ := record.Marshal(a)
		jb, _ := record.Marshal(b)
		if !bytes.Equal(ja, jb) {
			t.Errorf("Assemble(%q) not idempotent:\n%s\n%s", text, ja, jb)
		}
	}
}

func TestAssemble_FaultRecovered(t *testing.T) {
	a := New()
	a.passes = append(append([]pass{}, a.passes...), pass{
		name: "boom",
		run: func(*Assembler, string, *record.Record) {
			panic("index out of range")
		},
	})

	rec, err := a.Assemble(9, "DUPONT Jean, Histoire de Namur, Namur, 1900")
	if rec != nil {
		t.Error("faulted assembly returned a record")
	}
	if !errors.Is(err, ErrAssemblyFault) {
		t.Fatalf("error = %v, want ErrAssemblyFault", err)
	}
	var fe *FaultError
	if !errors.As(err, &fe) {
		t.Fatalf("error %T is not a *FaultError", err)
	}
	if fe.Pass != "boom" || fe.LineNum != 9 {
		t.Errorf("FaultError = %+v", fe)
	}
}

func TestExtract(t *testing.T) {
	a := New()
	rec, err := a.Extract(context.Background(), citation.Citation{LineNum: 12, Text: "DUPONT Jean, Histoire de Namur, Namur, 1900"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if rec.Publication.ReferenceNumber != "12" {
		t.Errorf("ReferenceNumber = %q, want 12", rec.Publication.ReferenceNumber)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Extract(ctx, citation.Citation{LineNum: 1, Text: "x"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Extract() with cancelled context error = %v", err)
	}
}
