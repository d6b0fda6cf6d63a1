package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Journal holds the periodical details of an article citation.
type Journal struct {
	Title  string
	Volume string
	Issue  string
}

var (
	journalTitle  = regexp.MustCompile(`^\s*([^,(]+?)\s*(?:,|\(|$)`)
	journalVolume = []*regexp.Regexp{
		regexp.MustCompile(`,\s*(\d+)(?:/\d+)?\s*\(\d{4}\)`),
		regexp.MustCompile(`(?i)\b(?:t|vol)\.\s*(\d+)`),
	}
	journalIssue = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:n°|\bno\.|\bnr\.|\bfasc\.|\bheft)\s*(\d+)`),
		regexp.MustCompile(`\b\d+/(\d+)\s*\(\d{4}\)`),
	}
)

// JournalInfo extracts the journal named after the container marker of an
// article citation. The zero value means no container marker was found.
func JournalInfo(text string) Journal {
	tail := containerTail(text)
	if tail == "" {
		return Journal{}
	}

	var j Journal
	if m := journalTitle.FindStringSubmatch(tail); m != nil && utf8.RuneCountInString(m[1]) > 1 {
		j.Title = strings.Trim(m[1], quoteChars)
	}
	j.Volume = firstGroup(journalVolume, tail)
	j.Issue = firstGroup(journalIssue, tail)
	return j
}

func firstGroup(res []*regexp.Regexp, text string) string {
	for _, re := range res {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// Container holds the enclosing volume of a book chapter.
type Container struct {
	Title   string
	Editors []string
}

var (
	containerLead  = regexp.MustCompile(`^[\s,]*(?:\(?(?i:éd|ed|dir|hrsg)s?\.\)?)?[\s,:]*`)
	containerChunk = regexp.MustCompile(`^([^,]+)`)
)

// ContainerInfo extracts the editors and title of the volume a chapter
// appears in, from the text after the "dans"/"in" marker.
func ContainerInfo(text string) Container {
	c := Container{Editors: []string{}}
	tail := strings.TrimSpace(containerTail(text))
	if tail == "" {
		return c
	}

	if span := authorRun.FindString(tail); span != "" {
		c.Editors = splitAuthors(span)
		tail = tail[len(span):]
	}
	tail = containerLead.ReplaceAllString(tail, "")

	if m := containerChunk.FindStringSubmatch(tail); m != nil {
		title := strings.TrimSpace(strings.Trim(m[1], quoteChars))
		if utf8.RuneCountInString(title) > 2 {
			c.Title = title
		}
	}
	return c
}
