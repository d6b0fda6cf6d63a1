package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/matsen/citeparse/internal/record"
	"github.com/matsen/citeparse/internal/remote"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"Histoire de l'abbaye", 10, "Histoir..."},
		{"Chartes déjà éditées", 8, "Chart..."},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestFormatAuthorsShort(t *testing.T) {
	tests := []struct {
		authors []string
		want    string
	}{
		{nil, ""},
		{[]string{"DUPONT Jean"}, "DUPONT Jean"},
		{[]string{"A", "B"}, "A, B"},
		{[]string{"A", "B", "C"}, "A, B et al."},
	}
	for _, tt := range tests {
		if got := formatAuthorsShort(tt.authors, 2); got != tt.want {
			t.Errorf("formatAuthorsShort(%q) = %q, want %q", tt.authors, got, tt.want)
		}
	}
}

func TestFormatRecordLine(t *testing.T) {
	rec := record.New(42)
	rec.Publication.PublicationType = record.Article
	rec.Publication.Title = record.String("Les chartes de Saint-Martin")
	rec.Publication.Auteurs = []string{"MARTIN Paul"}

	want := "0042 [article] Les chartes de Saint-Martin (MARTIN Paul)"
	if got := formatRecordLine(rec); got != want {
		t.Errorf("formatRecordLine() = %q, want %q", got, want)
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("line 3: %w", remote.ErrRateLimited), ExitRemoteError},
		{fmt.Errorf("line 3: %w", remote.ErrMalformedResponse), ExitRemoteError},
		{&remote.APIError{StatusCode: 500}, ExitRemoteError},
		{errors.New("boom"), ExitDataError},
	}
	for _, tt := range tests {
		if got := exitCodeFor(tt.err); got != tt.want {
			t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
