// Package extract holds the surface-pattern heuristics that pull metadata out of
// a single citation string. Every extractor is a pure function; an empty or nil
// result means no match and is never an error.
package extract

import (
	"regexp"

	"github.com/matsen/citeparse/internal/record"
)

var (
	// Container delimiters: ", dans:" / ", dans " and ", in:" / ", in ".
	dansMarker = regexp.MustCompile(`,\s*(?i:dans)(?::|\s)`)
	inMarker   = regexp.MustCompile(`,\s*(?i:in)(?::|\s)`)

	journalCue = regexp.MustCompile(`(?i)revue|bulletin|annales|mémoires|journal`)

	// Editor abbreviations must stand alone: "éd." but not "Fried.".
	editorCue = regexp.MustCompile(`(?:^|[\s(\[,])(?i:éd|ed|eds|dir|hrsg)\.`)

	thesisCue = regexp.MustCompile(`(?:^|[\s(\[,])(?i:th)\.|(?i:thèse|thesis)`)
)

// Classify decides the publication type of a citation from surface cues.
// A container delimiter wins over a thesis cue; "dans" is checked before "in".
func Classify(text string) record.PublicationType {
	dans := dansMarker.MatchString(text)
	if dans || inMarker.MatchString(text) {
		switch {
		case journalCue.MatchString(text):
			return record.Article
		case editorCue.MatchString(text):
			return record.BookChapter
		case dans:
			return record.Article
		default:
			return record.BookChapter
		}
	}

	if thesisCue.MatchString(text) {
		return record.Thesis
	}
	return record.Monograph
}

// containerTail returns the text after the first container delimiter, or "".
func containerTail(text string) string {
	loc := dansMarker.FindStringIndex(text)
	if loc == nil {
		loc = inMarker.FindStringIndex(text)
	}
	if loc == nil {
		return ""
	}
	return text[loc[1]:]
}
