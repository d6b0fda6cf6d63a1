package batch

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/matsen/citeparse/internal/assemble"
	"github.com/matsen/citeparse/internal/remote"
)

// MaxLoggedReference is how many characters of a failed citation the log keeps.
const MaxLoggedReference = 200

// Failure kinds that are not remote failures.
const (
	KindAssemblyFault = "assembly_fault"
	KindWriteError    = "write_error"
	KindError         = "error"
)

// FailureKind names the category of an extraction error.
func FailureKind(err error) string {
	if k := remote.Kind(err); k != "" {
		return k
	}
	if errors.Is(err, assemble.ErrAssemblyFault) {
		return KindAssemblyFault
	}
	return KindError
}

// FailureLog is an append-only text log of citations that could not be extracted.
type FailureLog struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewFailureLog returns a log appending to path.
func NewFailureLog(path string) *FailureLog {
	return &FailureLog{path: path, now: time.Now}
}

// Path returns the log file path.
func (l *FailureLog) Path() string { return l.path }

// Append records one failure:
//
//	[2025-01-02T15:04:05Z] Line 12 (malformed_response): reason
//	  Reference: first 200 characters...
func (l *FailureLog) Append(lineNum int, kind string, reason error, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening failure log: %w", err)
	}
	defer f.Close()

	entry := fmt.Sprintf("[%s] Line %d (%s): %v\n  Reference: %s\n\n",
		l.now().Format(time.RFC3339), lineNum, kind, reason, truncate(text, MaxLoggedReference))
	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("writing failure log: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
