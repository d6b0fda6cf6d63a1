package remote

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/citeparse/internal/citation"
	"github.com/matsen/citeparse/internal/record"
)

//go:embed prompts/extract.md
var defaultPrompt string

// Template holds the extraction instructions sent ahead of each citation.
type Template struct {
	text string
}

// DefaultTemplate is the built-in extraction prompt.
var DefaultTemplate = NewTemplate(defaultPrompt)

// NewTemplate wraps instruction text as a Template.
func NewTemplate(text string) Template {
	return Template{text: strings.TrimSpace(text)}
}

// LoadTemplate reads instruction text from a file.
func LoadTemplate(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("reading prompt template: %w", err)
	}
	t := NewTemplate(string(data))
	if t.text == "" {
		return Template{}, fmt.Errorf("prompt template %s is empty", path)
	}
	return t, nil
}

// Text returns the instruction text.
func (t Template) Text() string { return t.text }

// Prompt renders the full prompt for one citation.
func (t Template) Prompt(c citation.Citation) string {
	var b strings.Builder
	b.WriteString(t.text)
	b.WriteString("\n\n**Reference to process:**\n```\n")
	fmt.Fprintf(&b, "%d\t%s\n", c.LineNum, c.Text)
	b.WriteString("```\n\n")
	fmt.Fprintf(&b, "Set publication.reference_number to %q.\n", record.ReferenceNumber(c.LineNum))
	return b.String()
}
