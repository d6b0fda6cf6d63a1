package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matsen/citeparse/internal/record"
)

// Constants for output formatting.
const (
	DefaultSearchLimit = 50 // Default limit for search/list commands
	TitleMaxLen        = 70 // Title truncation in one-line summaries
)

var (
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...any) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("error:"), msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
	Count  int    `json:"count,omitempty"`
}

// field renders one "label: value" line, or nothing for an empty value.
func field(label, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf("%s %s\n", labelStyle.Render(label+":"), value)
}

// formatRecordHuman renders every non-null field of a record.
func formatRecordHuman(rec *record.Record) string {
	p, c := rec.Publication, rec.Content
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s [%s]", record.ID(mustLineNum(rec)), p.PublicationType)))
	b.WriteString("\n")
	b.WriteString(field("Authors", strings.Join(p.Auteurs, "; ")))
	b.WriteString(field("Title", record.Value(p.Title)))
	b.WriteString(field("Journal", record.Value(p.JournalTitle)))
	b.WriteString(field("Journal volume", record.Value(p.JournalVolume)))
	b.WriteString(field("Journal issue", record.Value(p.JournalIssue)))
	b.WriteString(field("In", record.Value(p.ContainerTitle)))
	b.WriteString(field("Editors", strings.Join(p.ContainerEditors, "; ")))
	b.WriteString(field("Place", record.Value(p.PlaceOfPublication)))
	b.WriteString(field("Publisher", record.Value(p.Publisher)))
	b.WriteString(field("Dates", record.Value(p.PublicationDates)))
	b.WriteString(field("Volume", record.Value(p.Volume)))
	b.WriteString(field("Tome", record.Value(p.Tome)))
	b.WriteString(field("Pages", record.Value(p.Pages)))
	b.WriteString(field("Series", record.Value(p.Series)))
	b.WriteString(field("Institution", record.Value(c.MainInstitution)))
	b.WriteString(field("Institution type", record.Value(c.InstitutionType)))
	b.WriteString(field("Place mentioned", record.Value(c.MentionedPlace)))
	b.WriteString(field("Region", record.Value(c.Region)))
	b.WriteString(field("Country", record.Value(c.Country)))
	b.WriteString(field("Order", record.Value(c.ReligiousOrder)))
	b.WriteString(field("Period", record.Value(c.TemporalCoverage)))
	b.WriteString(field("Document type", record.Value(c.DocumentType)))
	b.WriteString(field("Remarks", record.Value(rec.Remarks)))
	return b.String()
}

// formatRecordLine renders a record as "0012 [article] Title (AUTHOR)".
func formatRecordLine(rec *record.Record) string {
	line := fmt.Sprintf("%04d [%s] %s", mustLineNum(rec), rec.Publication.PublicationType,
		truncateString(record.Value(rec.Publication.Title), TitleMaxLen))
	if len(rec.Publication.Auteurs) > 0 {
		line += " (" + formatAuthorsShort(rec.Publication.Auteurs, 2) + ")"
	}
	return line
}

func mustLineNum(rec *record.Record) int {
	n, _ := rec.LineNum()
	return n
}

// formatAuthorsShort joins up to maxCount authors and adds "et al." for the rest.
func formatAuthorsShort(authors []string, maxCount int) string {
	if len(authors) <= maxCount {
		return strings.Join(authors, ", ")
	}
	return strings.Join(authors[:maxCount], ", ") + " et al."
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
