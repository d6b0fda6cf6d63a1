package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matsen/citeparse/internal/citation"
	"github.com/matsen/citeparse/internal/record"
)

// Extractor produces the record for one citation. Both the local assembler
// and the remote extractor satisfy it.
type Extractor interface {
	Extract(ctx context.Context, c citation.Citation) (*record.Record, error)
}

// Defaults for a Runner.
const (
	DefaultWorkers     = 1
	DefaultSaveEvery   = 10
	DefaultReportEvery = 100
)

// Summary counts the outcome of one run.
type Summary struct {
	Total   int           `json:"total"`
	Written int           `json:"written"`
	Skipped int           `json:"skipped"`
	Failed  int           `json:"failed"`
	Elapsed time.Duration `json:"elapsed"`
}

// Succeeded counts citations that have a record file after the run,
// including ones that were already done.
func (s Summary) Succeeded() int { return s.Written + s.Skipped }

// Runner extracts a list of citations into a Store.
type Runner struct {
	extractor   Extractor
	store       *Store
	failures    *FailureLog
	progress    *Progress
	logger      *slog.Logger
	workers     int
	saveEvery   int
	reportEvery int
	onProgress  func(Summary)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers sets how many citations are extracted concurrently.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithFailureLog sets where failures are appended.
func WithFailureLog(l *FailureLog) RunnerOption {
	return func(r *Runner) { r.failures = l }
}

// WithProgress enables resume bookkeeping.
func WithProgress(p *Progress) RunnerOption {
	return func(r *Runner) { r.progress = p }
}

// WithSaveEvery sets how many finished citations pass between progress saves.
func WithSaveEvery(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.saveEvery = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithProgressFunc registers a callback invoked every reportEvery finished citations.
func WithProgressFunc(every int, fn func(Summary)) RunnerOption {
	return func(r *Runner) {
		if every > 0 {
			r.reportEvery = every
		}
		r.onProgress = fn
	}
}

// NewRunner creates a Runner writing into store.
func NewRunner(ext Extractor, store *Store, opts ...RunnerOption) *Runner {
	r := &Runner{
		extractor:   ext,
		store:       store,
		logger:      slog.Default(),
		workers:     DefaultWorkers,
		saveEvery:   DefaultSaveEvery,
		reportEvery: DefaultReportEvery,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run extracts every citation that has no record file yet. Citations with
// existing files are skipped without extraction. A failed citation is logged
// and the run continues; only storage errors and cancellation stop it.
func (r *Runner) Run(ctx context.Context, cites []citation.Citation) (Summary, error) {
	start := time.Now()
	sum := Summary{Total: len(cites)}

	done, err := r.store.Completed()
	if err != nil {
		return sum, err
	}

	var mu sync.Mutex
	finished := 0
	// settled[i] is set once cites[i] is finished; low is the length of the
	// settled prefix. Only that prefix is recorded as processed, so a cancelled
	// parallel run never reports past an unfinished lower line.
	settled := make([]bool, len(cites))
	low := 0
	// finish must be called with mu held.
	finish := func(i int, written, failed bool) error {
		finished++
		settled[i] = true
		for low < len(settled) && settled[low] {
			low++
		}
		if r.progress != nil {
			mark := 0
			if low > 0 {
				mark = cites[low-1].LineNum
			}
			r.progress.Observe(mark, written, failed)
			if finished%r.saveEvery == 0 {
				if err := r.progress.Save(); err != nil {
					return err
				}
			}
		}
		if r.onProgress != nil && finished%r.reportEvery == 0 {
			snap := sum
			snap.Elapsed = time.Since(start)
			r.onProgress(snap)
		}
		return nil
	}

	r.logger.Info("batch.run.start", "citations", len(cites), "workers", r.workers, "output_dir", r.store.Dir())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	var skipErr error
	for i, c := range cites {
		if gctx.Err() != nil {
			break
		}
		if done[c.LineNum] {
			mu.Lock()
			sum.Skipped++
			skipErr = finish(i, false, false)
			mu.Unlock()
			if skipErr != nil {
				break
			}
			continue
		}

		g.Go(func() error {
			return r.process(gctx, i, c, &mu, &sum, finish)
		})
	}

	err = g.Wait()
	if err == nil {
		err = skipErr
	}
	sum.Elapsed = time.Since(start)

	if r.progress != nil {
		if saveErr := r.progress.Save(); saveErr != nil && err == nil {
			err = saveErr
		}
	}
	if err == nil {
		err = ctx.Err()
	}

	r.logger.Info("batch.run.done",
		"total", sum.Total,
		"written", sum.Written,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"elapsed_ms", sum.Elapsed.Milliseconds(),
	)
	return sum, err
}

func (r *Runner) process(ctx context.Context, i int, c citation.Citation, mu *sync.Mutex, sum *Summary, finish func(int, bool, bool) error) error {
	rec, err := r.extractor.Extract(ctx, c)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, citation.ErrEmptyCitation) {
			r.logger.Debug("batch.citation.empty", "line", c.LineNum)
			mu.Lock()
			defer mu.Unlock()
			return finish(i, false, false)
		}

		kind := FailureKind(err)
		r.logger.Warn("batch.citation.failed", "line", c.LineNum, "kind", kind, "error", err)

		mu.Lock()
		defer mu.Unlock()
		sum.Failed++
		if r.failures != nil {
			if logErr := r.failures.Append(c.LineNum, kind, err, c.Text); logErr != nil {
				return logErr
			}
		}
		return finish(i, false, true)
	}

	if err := r.store.Write(rec); err != nil {
		return fmt.Errorf("line %d: %w", c.LineNum, err)
	}
	r.logger.Debug("batch.citation.written", "line", c.LineNum, "type", rec.Publication.PublicationType)

	mu.Lock()
	defer mu.Unlock()
	sum.Written++
	return finish(i, true, false)
}
