package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrSchemaMismatch is returned by Validate for documents without the record shape.
var ErrSchemaMismatch = errors.New("does not match record schema")

// Schema returns the JSON Schema a record document must satisfy once its
// reference number and publication type have been normalised.
func Schema() map[string]any {
	pubTypes := make([]any, len(PublicationTypes))
	for i, t := range PublicationTypes {
		pubTypes[i] = string(t)
	}

	publication := map[string]any{
		"reference_number":  map[string]any{"type": "string", "pattern": `^\d+$`},
		"publication_type":  map[string]any{"type": "string", "enum": pubTypes},
		"auteurs":           stringListProp(),
		"container_editors": stringListProp(),
	}
	for _, f := range []string{
		"title", "place_of_publication", "publisher", "publication_dates", "volume", "tome",
		"pages", "series", "journal_title", "journal_volume", "journal_issue", "container_title",
	} {
		publication[f] = nullableStringProp()
	}

	content := map[string]any{}
	for _, f := range []string{
		"main_institution", "mentioned_place", "region", "country", "institution_type",
		"religious_order", "temporal_coverage", "document_type",
	} {
		content[f] = nullableStringProp()
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"publication": map[string]any{
				"type":       "object",
				"properties": publication,
				"required":   []string{"reference_number", "publication_type"},
			},
			"content": map[string]any{
				"type":       "object",
				"properties": content,
			},
			"remarks": nullableStringProp(),
		},
		"required": []string{"publication", "content"},
	}
}

func nullableStringProp() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}

func stringListProp() map[string]any {
	return map[string]any{
		"type":  []string{"array", "null"},
		"items": map[string]any{"type": "string"},
	}
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	b, err := json.Marshal(Schema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("record.json")
})

// Validate checks a decoded JSON document (maps, slices and float64s, as
// produced by encoding/json into an any) against Schema.
func Validate(doc any) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return nil
}
