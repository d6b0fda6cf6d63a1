// Package sourcepdf turns a PDF bibliography into the line-oriented source list.
package sourcepdf

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ExtractText returns the plain text of the first maxPages pages of a PDF.
// A maxPages of zero or less reads every page.
func ExtractText(filePath string, maxPages int) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue // unreadable pages are skipped
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

var (
	// "12.", "[12]", "12)" before the citation text
	numberedStart = regexp.MustCompile(`^(?:\[\d+\]|\d+[.)])\s+`)
	// an upper-case surname followed by a comma or a given name
	authorStart = regexp.MustCompile(`^\p{Lu}{2,}[\p{Lu}'’-]*(?:\s+\p{Lu}{2,}[\p{Lu}'’-]*)*(?:,|\s+\p{Lu}\p{Ll})`)
	pageNumber  = regexp.MustCompile(`^[-–\s]*\d{1,4}[-–\s]*$`)
)

// SplitEntries groups extracted text into one string per citation.
// A citation starts at a numbered line or at an upper-case surname;
// other lines continue the current one. Words broken across lines are rejoined
// and bare page numbers are dropped.
func SplitEntries(text string) []string {
	var entries []string
	var cur strings.Builder

	flush := func() {
		if s := strings.Join(strings.Fields(cur.String()), " "); s != "" {
			entries = append(entries, s)
		}
		cur.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || pageNumber.MatchString(line) {
			continue
		}
		if m := numberedStart.FindString(line); m != "" {
			flush()
			line = line[len(m):]
		} else if authorStart.MatchString(line) {
			flush()
		}
		appendLine(&cur, line)
	}
	flush()
	return entries
}

// appendLine adds a wrapped line to b, rejoining a word hyphenated at the break.
func appendLine(b *strings.Builder, line string) {
	if b.Len() == 0 {
		b.WriteString(line)
		return
	}
	prev := b.String()
	next, _ := utf8.DecodeRuneInString(line)
	if strings.HasSuffix(prev, "-") && unicode.IsLower(next) {
		b.Reset()
		b.WriteString(strings.TrimSuffix(prev, "-"))
		b.WriteString(line)
		return
	}
	b.WriteString(" ")
	b.WriteString(line)
}

// WriteList writes entries one per line, the format the batch driver reads.
func WriteList(w io.Writer, entries []string) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := fmt.Fprintln(bw, e); err != nil {
			return err
		}
	}
	return bw.Flush()
}
