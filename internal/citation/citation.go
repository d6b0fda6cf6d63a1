// Package citation reads line-oriented reference lists into numbered citations.
package citation

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxLineCapacity is the maximum length of a single source line (1MB).
const MaxLineCapacity = 1024 * 1024

// ErrEmptyCitation is returned for lines with no citation text after prefix stripping.
var ErrEmptyCitation = errors.New("empty citation")

// Citation is one reference line with its 1-based position in the source list.
type Citation struct {
	LineNum int    `json:"line_num"`
	Text    string `json:"text"`
}

// Range selects citations by line number, inclusive. Zero bounds are open.
type Range struct {
	From int
	To   int
}

// Contains reports whether line falls inside the range.
func (r Range) Contains(line int) bool {
	if r.From > 0 && line < r.From {
		return false
	}
	if r.To > 0 && line > r.To {
		return false
	}
	return true
}

const arrow = "→"

// lineMarker matches a numeric prefix such as "12", "0012:" or "12." before a tab.
var lineMarker = regexp.MustCompile(`^\s*\d+[:.]?\s*$`)

// Parse cleans one raw source line into a citation.
// Everything before the first "→" is dropped, as is a numeric marker before a tab.
// The remaining text is trimmed and NFC-normalised.
func Parse(lineNum int, raw string) (Citation, error) {
	text := raw
	if i := strings.Index(text, arrow); i >= 0 {
		text = text[i+len(arrow):]
	} else if i := strings.IndexByte(text, '\t'); i >= 0 && lineMarker.MatchString(text[:i]) {
		text = text[i+1:]
	}
	text = strings.TrimSpace(norm.NFC.String(text))
	if text == "" {
		return Citation{}, fmt.Errorf("line %d: %w", lineNum, ErrEmptyCitation)
	}
	return Citation{LineNum: lineNum, Text: text}, nil
}

// Read scans r and returns the non-empty citations inside rng.
// Line numbers count every physical line, blank ones included.
func Read(r io.Reader, rng Range) ([]Citation, error) {
	var cites []Citation
	err := scan(r, func(lineNum int, line string) bool {
		if rng.To > 0 && lineNum > rng.To {
			return false
		}
		if !rng.Contains(lineNum) {
			return true
		}
		c, err := Parse(lineNum, line)
		if err == nil {
			cites = append(cites, c)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return cites, nil
}

// ReadFile reads citations from the source file at path.
func ReadFile(path string, rng Range) ([]Citation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening source file: %w", err)
	}
	defer f.Close()

	return Read(f, rng)
}

// CountFile returns the number of non-empty citations in the source file.
func CountFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening source file: %w", err)
	}
	defer f.Close()

	count := 0
	err = scan(f, func(lineNum int, line string) bool {
		if _, err := Parse(lineNum, line); err == nil {
			count++
		}
		return true
	})
	return count, err
}

// Line returns the citation at a single line number.
func Line(path string, lineNum int) (Citation, error) {
	cites, err := ReadFile(path, Range{From: lineNum, To: lineNum})
	if err != nil {
		return Citation{}, err
	}
	if len(cites) == 0 {
		return Citation{}, fmt.Errorf("line %d: %w", lineNum, ErrEmptyCitation)
	}
	return cites[0], nil
}

// scan calls fn for each line until fn returns false.
func scan(r io.Reader, fn func(lineNum int, line string) bool) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, MaxLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if !fn(lineNum, scanner.Text()) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading source line %d: %w", lineNum+1, err)
	}
	return nil
}
