// Package record defines the structured metadata produced for one bibliographic citation.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// PublicationType classifies the kind of work a citation describes.
type PublicationType string

const (
	Monograph   PublicationType = "monograph"
	Article     PublicationType = "article"
	BookChapter PublicationType = "book_chapter"
	Thesis      PublicationType = "thesis"
)

// PublicationTypes lists every valid publication type in classifier order.
var PublicationTypes = []PublicationType{Article, BookChapter, Thesis, Monograph}

// Institution types recognised by the content extractors.
const (
	InstitutionAbbey            = "abbey"
	InstitutionPriory           = "priory"
	InstitutionMonastery        = "monastery"
	InstitutionCathedralChapter = "cathedral chapter"
	InstitutionConvent          = "convent"
	InstitutionHospital         = "hospital"
	InstitutionChurch           = "church"
)

// Document types recognised by the content extractors.
const (
	DocumentCartulary  = "cartulary"
	DocumentCollection = "collection"
	DocumentCharter    = "charter"
	DocumentActs       = "acts"
	DocumentRegister   = "register"
	DocumentHistory    = "history"
	DocumentCatalogue  = "catalogue"
)

// Record is the structured result for one citation.
// Field order is the serialisation order.
type Record struct {
	Publication Publication `json:"publication"`
	Content     Content     `json:"content"`
	Remarks     *string     `json:"remarks"`
}

// Publication holds the bibliographic description of the cited work.
type Publication struct {
	ReferenceNumber    string          `json:"reference_number"`
	PublicationType    PublicationType `json:"publication_type"`
	Title              *string         `json:"title"`
	Auteurs            []string        `json:"auteurs"`
	PlaceOfPublication *string         `json:"place_of_publication"`
	Publisher          *string         `json:"publisher"`
	PublicationDates   *string         `json:"publication_dates"`
	Volume             *string         `json:"volume"`
	Tome               *string         `json:"tome"`
	Pages              *string         `json:"pages"`
	Series             *string         `json:"series"`
	JournalTitle       *string         `json:"journal_title"`
	JournalVolume      *string         `json:"journal_volume"`
	JournalIssue       *string         `json:"journal_issue"`
	ContainerTitle     *string         `json:"container_title"`
	ContainerEditors   []string        `json:"container_editors"`
}

// Content holds what the cited work is about: the institution, its setting and the kind of source.
type Content struct {
	MainInstitution  *string `json:"main_institution"`
	MentionedPlace   *string `json:"mentioned_place"`
	Region           *string `json:"region"`
	Country          *string `json:"country"`
	InstitutionType  *string `json:"institution_type"`
	ReligiousOrder   *string `json:"religious_order"`
	TemporalCoverage *string `json:"temporal_coverage"`
	DocumentType     *string `json:"document_type"`
}

// New returns an empty record for the given citation line.
// Every optional field is null and both list fields are empty.
func New(lineNum int) *Record {
	return &Record{
		Publication: Publication{
			ReferenceNumber:  ReferenceNumber(lineNum),
			PublicationType:  Monograph,
			Auteurs:          []string{},
			ContainerEditors: []string{},
		},
	}
}

// ReferenceNumber formats a citation line number as stored in a record.
func ReferenceNumber(lineNum int) string {
	return strconv.Itoa(lineNum)
}

// LineNum returns the citation line number the record belongs to.
func (r *Record) LineNum() (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(r.Publication.ReferenceNumber))
	if err != nil {
		return 0, fmt.Errorf("invalid reference_number %q: %w", r.Publication.ReferenceNumber, err)
	}
	return n, nil
}

// MarshalJSON encodes nil list fields as empty arrays.
func (p Publication) MarshalJSON() ([]byte, error) {
	type plain Publication
	out := plain(p)
	if out.Auteurs == nil {
		out.Auteurs = []string{}
	}
	if out.ContainerEditors == nil {
		out.ContainerEditors = []string{}
	}
	return marshalUnescaped(out)
}

// marshalUnescaped encodes v without HTML escaping so "&" and "<" survive literally.
func marshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Encode writes rec as 2-space indented JSON with non-ASCII text kept literal.
func Encode(w io.Writer, rec *Record) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encoding record %s: %w", rec.Publication.ReferenceNumber, err)
	}
	return nil
}

// Marshal returns the indented encoding produced by Encode.
func Marshal(rec *Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads one record from r.
func Decode(r io.Reader) (*Record, error) {
	var rec Record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	rec.normalizeLists()
	return &rec, nil
}

func (r *Record) normalizeLists() {
	if r.Publication.Auteurs == nil {
		r.Publication.Auteurs = []string{}
	}
	if r.Publication.ContainerEditors == nil {
		r.Publication.ContainerEditors = []string{}
	}
}

// String returns a pointer to s, or nil when s is empty.
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Value dereferences p, returning "" for nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// NormalizePublicationType maps a publication type label, including the
// variant spellings "book" and "chapter", to its canonical value.
func NormalizePublicationType(s string) (PublicationType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monograph", "book":
		return Monograph, true
	case "article":
		return Article, true
	case "book_chapter", "chapter", "book chapter":
		return BookChapter, true
	case "thesis":
		return Thesis, true
	}
	return "", false
}
