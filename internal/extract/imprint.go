package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	multiYear  = regexp.MustCompile(`\b\d{4}(?:;\s*\d{4})+\b`)
	yearOrSpan = regexp.MustCompile(`\b\d{4}(?:\s*[-–]\s*\d{4})?\b`)
	lastYear   = regexp.MustCompile(`\d{4}$`)
	pageMarker = regexp.MustCompile(`(?i)\b(?:p|pp|s)\.\s*$`)

	placePublisherYear = regexp.MustCompile(`,\s+(` + placeName + `),\s+([^,]+?),\s+(\d{4})\b`)
	placeOnly          = regexp.MustCompile(`,\s+(` + placeName + `),\s+(?:\d{4}|\p{Lu})`)
)

// Dates returns the publication year or year range. A "YYYY; YYYY" form wins
// and yields its final year; otherwise the last year or range in the text.
// Four-digit page numbers ("p. 1012-1034") are not years.
func Dates(text string) string {
	if all := multiYear.FindAllString(text, -1); len(all) > 0 {
		return lastYear.FindString(all[len(all)-1])
	}
	locs := yearOrSpan.FindAllStringIndex(text, -1)
	for i := len(locs) - 1; i >= 0; i-- {
		if pageMarker.MatchString(text[:locs[i][0]]) {
			continue
		}
		return text[locs[i][0]:locs[i][1]]
	}
	return ""
}

// PlaceAndPublisher returns the place of publication and, when a
// "Place, Publisher, Year" window is present, the publisher.
// The last matching window in the text wins.
func PlaceAndPublisher(text string) (place, publisher string) {
	if all := placePublisherYear.FindAllStringSubmatch(text, -1); len(all) > 0 {
		m := all[len(all)-1]
		return m[1], strings.TrimSpace(m[2])
	}
	if all := placeOnly.FindAllStringSubmatch(text, -1); len(all) > 0 {
		return all[len(all)-1][1], ""
	}
	return "", ""
}

// patternFamily is an ordered list of alternatives; the first one that matches wins.
type patternFamily []*regexp.Regexp

func (f patternFamily) find(text string) string {
	for _, re := range f {
		if m := re.FindString(text); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

const pageRange = `\d+(?:\s*[-–]\s*\d+)?`

var (
	volumePatterns = patternFamily{
		regexp.MustCompile(`(?i)\b\d+\s+vol(?:ume)?s?\b\.?`),
		regexp.MustCompile(`(?i)\bvol\.?\s*\d+`),
		regexp.MustCompile(`(?i)\b\d+\s+bände?`),
		regexp.MustCompile(`(?i)\bv\.\s?\d+`),
	}
	tomePatterns = patternFamily{
		regexp.MustCompile(`(?i)\bt\.\s*\d+`),
		regexp.MustCompile(`(?i)\btome\s+\d+`),
		regexp.MustCompile(`\bBand\s+\d+`),
	}
	pagePatterns = patternFamily{
		regexp.MustCompile(`(?i)\bp\.\s*` + pageRange),
		regexp.MustCompile(`(?i)\bpp\.\s*` + pageRange),
		regexp.MustCompile(`\bS\.\s*` + pageRange),
	}
)

// Volume returns a volume marker such as "3 vol." or "vol. 2".
func Volume(text string) string { return volumePatterns.find(text) }

// Tome returns a tome marker such as "t. 4" or "Band 2".
func Tome(text string) string { return tomePatterns.find(text) }

// Pages returns a page marker such as "p. 12-34" or "S. 5".
func Pages(text string) string { return pagePatterns.find(text) }

// MinSeriesLength excludes bare acronyms in parentheses.
const MinSeriesLength = 10

var (
	parenthetical = regexp.MustCompile(`\(([^()]*)\)`)
	seriesCue     = regexp.MustCompile(`(?i)collection|series|publications|monumenta|commission`)
)

// Series returns the longest parenthetical naming a series or collection.
func Series(text string) string {
	best := ""
	for _, m := range parenthetical.FindAllStringSubmatch(text, -1) {
		s := strings.TrimSpace(m[1])
		if !seriesCue.MatchString(s) || utf8.RuneCountInString(s) <= MinSeriesLength {
			continue
		}
		if utf8.RuneCountInString(s) > utf8.RuneCountInString(best) {
			best = s
		}
	}
	return best
}
