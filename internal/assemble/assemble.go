// Package assemble runs the field extractors over one citation in a fixed
// order and collects their results into a record.
package assemble

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matsen/citeparse/internal/citation"
	"github.com/matsen/citeparse/internal/extract"
	"github.com/matsen/citeparse/internal/record"
)

// ErrAssemblyFault indicates an extractor failed unexpectedly while a record was being built.
var ErrAssemblyFault = errors.New("assembly fault")

// FaultError reports which pass failed and what it panicked with.
type FaultError struct {
	LineNum int
	Pass    string
	Value   any
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("line %d: %s pass failed: %v", e.LineNum, e.Pass, e.Value)
}

func (e *FaultError) Unwrap() error { return ErrAssemblyFault }

// pass fills part of rec from text.
type pass struct {
	name string
	run  func(a *Assembler, text string, rec *record.Record)
}

// defaultPasses is the fixed evaluation order. Later passes may read fields
// set by earlier ones (journal and container depend on the publication type).
var defaultPasses = []pass{
	{"publication_type", func(_ *Assembler, text string, rec *record.Record) {
		rec.Publication.PublicationType = extract.Classify(text)
	}},
	{"authors", func(_ *Assembler, text string, rec *record.Record) {
		rec.Publication.Auteurs = extract.Authors(text)
	}},
	{"title", func(a *Assembler, text string, rec *record.Record) {
		title := extract.Title(text)
		if title == "" && a.titleFallback {
			title = extract.FallbackTitle(text)
		}
		rec.Publication.Title = record.String(title)
	}},
	{"imprint", func(_ *Assembler, text string, rec *record.Record) {
		place, publisher := extract.PlaceAndPublisher(text)
		rec.Publication.PublicationDates = record.String(extract.Dates(text))
		rec.Publication.PlaceOfPublication = record.String(place)
		rec.Publication.Publisher = record.String(publisher)
	}},
	{"extent", func(_ *Assembler, text string, rec *record.Record) {
		rec.Publication.Volume = record.String(extract.Volume(text))
		rec.Publication.Tome = record.String(extract.Tome(text))
		rec.Publication.Pages = record.String(extract.Pages(text))
	}},
	{"series", func(_ *Assembler, text string, rec *record.Record) {
		rec.Publication.Series = record.String(extract.Series(text))
	}},
	{"container", func(_ *Assembler, text string, rec *record.Record) {
		switch rec.Publication.PublicationType {
		case record.Article:
			j := extract.JournalInfo(text)
			rec.Publication.JournalTitle = record.String(j.Title)
			rec.Publication.JournalVolume = record.String(j.Volume)
			rec.Publication.JournalIssue = record.String(j.Issue)
		case record.BookChapter:
			c := extract.ContainerInfo(text)
			rec.Publication.ContainerTitle = record.String(c.Title)
			rec.Publication.ContainerEditors = c.Editors
		}
	}},
	{"content", func(a *Assembler, text string, rec *record.Record) {
		inst := extract.FindInstitution(text)
		country := extract.Country(text)
		region := extract.Region(text)
		order := extract.ReligiousOrder(text)
		if p, ok := a.gazetteer.Lookup(inst.Place); ok {
			country = firstNonEmpty(country, p.Country)
			region = firstNonEmpty(region, p.Region)
			order = firstNonEmpty(order, p.Order)
		}
		rec.Content.MainInstitution = record.String(inst.Name)
		rec.Content.MentionedPlace = record.String(inst.Place)
		rec.Content.InstitutionType = record.String(inst.Type)
		rec.Content.Country = record.String(country)
		rec.Content.Region = record.String(region)
		rec.Content.ReligiousOrder = record.String(order)
		rec.Content.TemporalCoverage = record.String(extract.TemporalCoverage(text))
	}},
	{"document_type", func(_ *Assembler, text string, rec *record.Record) {
		rec.Content.DocumentType = record.String(extract.DocumentType(text))
	}},
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// Assembler builds records from citation text. It holds no per-call state
// and is safe for concurrent use.
type Assembler struct {
	gazetteer     extract.Gazetteer
	titleFallback bool
	passes        []pass
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithGazetteer replaces the built-in gazetteer.
func WithGazetteer(g extract.Gazetteer) Option {
	return func(a *Assembler) {
		if g != nil {
			a.gazetteer = g
		}
	}
}

// WithTitleFallback enables the first-comma-chunk title heuristic when no
// regular title pattern matches.
func WithTitleFallback(enabled bool) Option {
	return func(a *Assembler) {
		a.titleFallback = enabled
	}
}

// New creates an Assembler.
func New(opts ...Option) *Assembler {
	a := &Assembler{
		gazetteer: extract.DefaultGazetteer(),
		passes:    defaultPasses,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var defaultAssembler = New()

// Assemble builds a record with the default settings.
func Assemble(lineNum int, text string) (*record.Record, error) {
	return defaultAssembler.Assemble(lineNum, text)
}

// Assemble builds the record for one citation. Fields no extractor matched
// stay null. Empty text yields citation.ErrEmptyCitation and no record.
func (a *Assembler) Assemble(lineNum int, text string) (rec *record.Record, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("line %d: %w", lineNum, citation.ErrEmptyCitation)
	}

	rec = record.New(lineNum)
	current := ""
	defer func() {
		if v := recover(); v != nil {
			rec = nil
			err = &FaultError{LineNum: lineNum, Pass: current, Value: v}
		}
	}()

	for _, p := range a.passes {
		current = p.name
		p.run(a, text, rec)
	}
	return rec, nil
}

// Extract assembles c. It lets the assembler stand in wherever a remote
// extractor is accepted.
func (a *Assembler) Extract(ctx context.Context, c citation.Citation) (*record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.Assemble(c.LineNum, c.Text)
}
