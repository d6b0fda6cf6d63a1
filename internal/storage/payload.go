package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matsen/citeparse/internal/record"
)

// payloadItem is one element of a saved payload. The record is either the
// item itself or its "data" member; the line number may sit beside it.
type payloadItem struct {
	LineNumber *int            `json:"line_number"`
	LineNum    *int            `json:"line_num"`
	Data       json.RawMessage `json:"data"`
}

// DecodePayload reads records produced outside the batch driver: a single
// record object, an array of them, or either form wrapped as
// {"line_number": N, "data": {...}}. The line number comes from the wrapper,
// then from publication.reference_number, then from startLine plus the item's
// position. Every item must match the record schema; nothing is decoded
// leniently.
func DecodePayload(r io.Reader, startLine int) ([]*record.Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty payload")
	}

	var items []json.RawMessage
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("parsing payload array: %w", err)
		}
	} else {
		items = []json.RawMessage{raw}
	}

	recs := make([]*record.Record, 0, len(items))
	for i, item := range items {
		rec, err := decodeItem(item, startLine+i)
		if err != nil {
			return nil, fmt.Errorf("payload item %d: %w", i, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func decodeItem(item json.RawMessage, fallbackLine int) (*record.Record, error) {
	var wrap payloadItem
	if err := json.Unmarshal(item, &wrap); err != nil {
		return nil, fmt.Errorf("parsing item: %w", err)
	}

	body := item
	if len(wrap.Data) > 0 && !bytes.Equal(bytes.TrimSpace(wrap.Data), []byte("null")) {
		body = wrap.Data
	}
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}
	pub, ok := doc["publication"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: no publication object", record.ErrSchemaMismatch)
	}

	line := fallbackLine
	switch {
	case wrap.LineNumber != nil:
		line = *wrap.LineNumber
	case wrap.LineNum != nil:
		line = *wrap.LineNum
	default:
		if n, ok := referenceLine(pub["reference_number"]); ok {
			line = n
		}
	}
	if line <= 0 {
		return nil, fmt.Errorf("invalid line number %d", line)
	}
	pub["reference_number"] = record.ReferenceNumber(line)

	switch v := pub["publication_type"].(type) {
	case nil:
		pub["publication_type"] = string(record.Monograph)
	case string:
		t, ok := record.NormalizePublicationType(v)
		if !ok {
			return nil, fmt.Errorf("line %d: unknown publication_type %q", line, v)
		}
		pub["publication_type"] = string(t)
	}

	if err := record.Validate(doc); err != nil {
		return nil, fmt.Errorf("line %d: %w", line, err)
	}
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", line, err)
	}
	return record.Decode(bytes.NewReader(normalized))
}

// referenceLine reads a reference_number given as "12" or 12.
func referenceLine(v any) (int, bool) {
	switch v := v.(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}
