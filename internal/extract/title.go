package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinTitleLength is the shortest candidate accepted as a title, in characters.
const MinTitleLength = 10

// placeName is a capitalised, optionally hyphenated place token: "Paris", "Louvain-la-Neuve".
const placeName = `\p{Lu}\p{Ll}+(?:-\p{Lu}?\p{Ll}+)*`

var quotedTitles = []*regexp.Regexp{
	regexp.MustCompile(`"([^"]+)"`),
	regexp.MustCompile(`“([^”]+)”`),
	regexp.MustCompile(`«([^»]+)»`),
	regexp.MustCompile(`‘([^’]+)’`),
	// Straight single quotes, skipping apostrophes inside words such as "l'abbaye".
	regexp.MustCompile(`(?:^|[\s,:;(])'((?:[^']|'\p{L})+?)'(?:[\s,.;:)]|$)`),
}

var (
	titleBeforeBoundary = regexp.MustCompile(`,\s+(\p{Lu}[^,]+?),\s+(?:(?i:dans|in)[\s:]|` + placeName + `,)`)
	titleAfterEditor    = regexp.MustCompile(`\((?i:éd|ed|dir)s?\.\)\s*,\s*([^,]+)`)
)

const quoteChars = ` "'“”«»‘’`

// Title returns the title of the cited work, or "" if none is found.
// Candidates are tried in order: a quoted span, a comma-delimited span ending
// at a container marker or a "Place," boundary, then the span after "(éd.)".
func Title(text string) string {
	for _, re := range quotedTitles {
		if t := titleCandidate(re, text); t != "" {
			return t
		}
	}
	if t := titleCandidate(titleBeforeBoundary, text); t != "" {
		return t
	}
	return titleCandidate(titleAfterEditor, text)
}

func titleCandidate(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return cleanTitle(m[1])
}

func cleanTitle(s string) string {
	s = strings.TrimSpace(strings.Trim(s, quoteChars))
	if utf8.RuneCountInString(s) < MinTitleLength {
		return ""
	}
	return s
}

// FallbackTitle returns the first comma-delimited chunk after the author run.
// It is less reliable than Title and only used when explicitly enabled.
func FallbackTitle(text string) string {
	rest := strings.TrimLeft(text[leadingAuthorSpan(text):], " ,.;:")
	if i := strings.IndexByte(rest, ','); i >= 0 {
		rest = rest[:i]
	}
	return cleanTitle(rest)
}
