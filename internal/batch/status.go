package batch

import (
	"github.com/matsen/citeparse/internal/citation"
)

// NextBatch returns up to size citations after the last processed line.
// A size of zero or less returns everything that remains.
func NextBatch(sourcePath string, p *Progress, size int) ([]citation.Citation, error) {
	cites, err := citation.ReadFile(sourcePath, citation.Range{From: p.LastProcessedLine + 1})
	if err != nil {
		return nil, err
	}
	if size > 0 && len(cites) > size {
		cites = cites[:size]
	}
	return cites, nil
}

// Status summarises how far a source list has been processed.
type Status struct {
	RunID             string  `json:"run_id"`
	SourceTotal       int     `json:"source_total"`
	Completed         int     `json:"completed"`
	Remaining         int     `json:"remaining"`
	TotalErrors       int     `json:"total_errors"`
	LastProcessedLine int     `json:"last_processed_line"`
	Percent           float64 `json:"percent"`
}

// ComputeStatus combines the source list, the record store and the saved progress.
func ComputeStatus(sourcePath string, store *Store, p *Progress) (Status, error) {
	total, err := citation.CountFile(sourcePath)
	if err != nil {
		return Status{}, err
	}
	done, err := store.Completed()
	if err != nil {
		return Status{}, err
	}

	st := Status{
		RunID:             p.RunID,
		SourceTotal:       total,
		Completed:         len(done),
		TotalErrors:       p.TotalErrors,
		LastProcessedLine: p.LastProcessedLine,
	}
	st.Remaining = max(total-st.Completed, 0)
	if total > 0 {
		st.Percent = float64(min(st.Completed, total)) * 100 / float64(total)
	}
	return st, nil
}
