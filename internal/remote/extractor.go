package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/matsen/citeparse/internal/citation"
	"github.com/matsen/citeparse/internal/record"
)

// Completer answers a prompt with text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Extractor turns citations into records through a Completer.
type Extractor struct {
	client   Completer
	template Template
	policy   Policy
	logger   *slog.Logger
}

// NewExtractor creates an Extractor. Retries happen here and nowhere else.
func NewExtractor(client Completer, tmpl Template, policy Policy) *Extractor {
	return &Extractor{
		client:   client,
		template: tmpl,
		policy:   policy,
		logger:   slog.Default(),
	}
}

// Extract asks the model for the record of c. A failed extraction never
// returns a partial record.
func (e *Extractor) Extract(ctx context.Context, c citation.Citation) (*record.Record, error) {
	prompt := e.template.Prompt(c)

	policy := e.policy
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		e.logger.Warn("remote.extract.retry",
			"line", c.LineNum,
			"attempt", attempt,
			"kind", Kind(err),
			"wait_ms", wait.Milliseconds(),
			"error", err,
		)
	}

	var rec *record.Record
	err := Retry(ctx, policy, func(ctx context.Context) error {
		text, err := e.client.Complete(ctx, prompt)
		if err != nil {
			return err
		}
		r, err := ParseResponse(text, c.LineNum)
		if err != nil {
			return err
		}
		rec = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", c.LineNum, err)
	}
	return rec, nil
}

// ParseResponse decodes a model answer into a record for lineNum. Code
// fences are stripped, a missing reference number is filled in, and a
// reference number for a different line is rejected.
func ParseResponse(text string, lineNum int) (*record.Record, error) {
	body := stripCodeFence(text)

	var doc map[string]any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("%w: not JSON: %v", ErrMalformedResponse, err)
	}

	if pub, ok := doc["publication"].(map[string]any); ok {
		if err := fixReferenceNumber(pub, lineNum); err != nil {
			return nil, err
		}
		if s, ok := pub["publication_type"].(string); ok {
			t, ok := record.NormalizePublicationType(s)
			if !ok {
				return nil, fmt.Errorf("%w: unknown publication_type %q", ErrMalformedResponse, s)
			}
			pub["publication_type"] = string(t)
		}
	}

	if err := record.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	rec, err := record.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return rec, nil
}

func fixReferenceNumber(pub map[string]any, lineNum int) error {
	want := record.ReferenceNumber(lineNum)
	var got string
	switch v := pub["reference_number"].(type) {
	case nil:
		pub["reference_number"] = want
		return nil
	case string:
		got = strings.TrimSpace(v)
	case float64:
		got = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Errorf("%w: reference_number has type %T", ErrMalformedResponse, v)
	}
	if n, err := strconv.Atoi(got); err == nil && n == lineNum {
		pub["reference_number"] = want
		return nil
	}
	return fmt.Errorf("%w: reference_number %q does not match line %d", ErrMalformedResponse, got, lineNum)
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return strings.Trim(text, "`")
	}
	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}
	return strings.Join(lines[1:end], "\n")
}
