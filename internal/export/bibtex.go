// Package export renders records as BibTeX and as XLSX workbooks.
package export

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/matsen/citeparse/internal/record"
)

// ToBibTeX converts a record to a BibTeX entry keyed by its reference number.
func ToBibTeX(rec *record.Record) string {
	p := rec.Publication
	entryType := entryType(p.PublicationType)
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{ref%s,\n", entryType, p.ReferenceNumber))

	field := func(name string, value *string) {
		if v := record.Value(value); v != "" {
			b.WriteString(fmt.Sprintf("  %s = {%s},\n", name, escapeLatex(v)))
		}
	}

	if len(p.Auteurs) > 0 {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", formatAuthors(p.Auteurs)))
	}
	field("title", p.Title)

	switch p.PublicationType {
	case record.Article:
		field("journal", p.JournalTitle)
		field("volume", p.JournalVolume)
		field("number", p.JournalIssue)
	case record.BookChapter:
		field("booktitle", p.ContainerTitle)
		if len(p.ContainerEditors) > 0 {
			b.WriteString(fmt.Sprintf("  editor = {%s},\n", formatAuthors(p.ContainerEditors)))
		}
		field("volume", p.Volume)
	default:
		field("volume", p.Volume)
	}

	field("series", p.Series)
	field("publisher", p.Publisher)
	field("address", p.PlaceOfPublication)
	field("year", p.PublicationDates)
	field("pages", p.Pages)
	field("note", rec.Remarks)

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts multiple records to BibTeX format.
func ToBibTeXList(recs []*record.Record) string {
	var entries []string
	for _, rec := range recs {
		entries = append(entries, ToBibTeX(rec))
	}
	return strings.Join(entries, "\n")
}

func entryType(t record.PublicationType) string {
	switch t {
	case record.Article:
		return "article"
	case record.BookChapter:
		return "incollection"
	case record.Thesis:
		return "phdthesis"
	default:
		return "book"
	}
}

// formatAuthors turns "DUPONT Jean" into "Dupont, Jean" joined with " and ".
// Names without an upper-case surname are passed through.
func formatAuthors(names []string) string {
	formatted := make([]string, 0, len(names))
	for _, n := range names {
		formatted = append(formatted, escapeLatex(bibName(n)))
	}
	return strings.Join(formatted, " and ")
}

func bibName(name string) string {
	parts := strings.Fields(name)
	var last []string
	for len(parts) > 0 && isUpperWord(parts[0]) {
		last = append(last, titleCase(parts[0]))
		parts = parts[1:]
	}
	if len(last) == 0 || len(parts) == 0 {
		return name
	}
	return strings.Join(last, " ") + ", " + strings.Join(parts, " ")
}

func isUpperWord(w string) bool {
	letters := 0
	for _, r := range w {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters > 1
}

// titleCase lowers every letter that does not start a word part.
func titleCase(w string) string {
	rs := []rune(strings.ToLower(w))
	start := true
	for i, r := range rs {
		if start && unicode.IsLetter(r) {
			rs[i] = unicode.ToUpper(r)
		}
		start = !unicode.IsLetter(r)
	}
	return string(rs)
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
