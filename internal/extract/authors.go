package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// surname is one or more fully capitalised words: "DUPONT", "VAN DER ELST", "D'HAENENS".
	surname = `\p{Lu}[\p{Lu}'’\-]+(?:\s+\p{Lu}[\p{Lu}'’\-]+)*`
	// givenName covers "Jean", "J.", "Jean-Pierre" and "J.-P.".
	givenName = `\p{Lu}(?:\p{Ll}[\p{Ll}'’\-]*|\.)(?:-?\p{Lu}(?:\p{Ll}+|\.))*`
	// editorNote is a parenthetical editor marker such as "(éd.)" or "(eds.)".
	editorNote = `\s*\((?i:éd|ed|dir|hrsg)s?\.?\)`

	personName = surname + `(?:\s+` + givenName + `)+(?:` + editorNote + `)?`
	nameJoin   = `(?:\s+(?:et|and)\s+|\s+-\s+|\s*–\s*)`
)

var (
	authorRun   = regexp.MustCompile(`^` + personName + `(?:` + nameJoin + personName + `)*`)
	parenthesis = regexp.MustCompile(`\s*\([^)]*\)`)
)

// authorSeparators are tried in order; only the first kind present is used.
var authorSeparators = []string{" et ", " and ", " - ", "–"}

// Authors returns the leading "SURNAME Given" run of a citation, split into
// individual names. It never guesses authors from the middle of the text.
func Authors(text string) []string {
	span := authorRun.FindString(text)
	if span == "" {
		return []string{}
	}
	return splitAuthors(span)
}

func splitAuthors(span string) []string {
	span = parenthesis.ReplaceAllString(span, "")

	parts := []string{span}
	for _, sep := range authorSeparators {
		if strings.Contains(span, sep) {
			parts = strings.Split(span, sep)
			break
		}
	}

	names := []string{}
	for _, p := range parts {
		name := trimName(p)
		if utf8.RuneCountInString(name) > 2 {
			names = append(names, name)
		}
	}
	return names
}

// trimName strips surrounding punctuation but keeps the period of a trailing initial.
func trimName(s string) string {
	s = strings.Trim(s, " \t,;:")
	for strings.HasSuffix(s, ".") {
		r, _ := utf8.DecodeLastRuneInString(strings.TrimSuffix(s, "."))
		if unicode.IsUpper(r) {
			break
		}
		s = strings.TrimRight(strings.TrimSuffix(s, "."), " \t,;:")
	}
	return s
}

// leadingAuthorSpan returns the byte length of the author run at the start of text.
func leadingAuthorSpan(text string) int {
	loc := authorRun.FindStringIndex(text)
	if loc == nil {
		return 0
	}
	return loc[1]
}
