// Package run reads the inputs of the maxlines command batch by batch and
// hands the batches to an emitter.
package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rusq/maxlines"
	"github.com/rusq/maxlines/internal/emit"
)

// ErrTooManyErrors is returned for an input that was abandoned after too
// many consecutive line errors.
var ErrTooManyErrors = errors.New("too many consecutive read errors")

// Runner processes inputs.
type Runner struct {
	// Open opens the named input.
	Open func(name string) (io.ReadCloser, error)
	// NewReader wraps the opened input in a maxlines.Reader.
	NewReader func(r io.Reader) *maxlines.Reader
	Emitter   emit.Emitter
	// MaxErrors is the number of consecutive line errors after which the
	// input is abandoned.  Zero means never.
	MaxErrors int
	// Concurrency is the number of inputs processed at the same time.
	Concurrency int
	Logger      zerolog.Logger
}

// Stats are the counters of a run.
type Stats struct {
	Inputs    int64
	Batches   int64
	Lines     int64
	Failed    int64
	Abandoned int64
}

type counters struct {
	inputs, batches, lines, failed, abandoned atomic.Int64
}

func (c *counters) stats() Stats {
	return Stats{
		Inputs:    c.inputs.Load(),
		Batches:   c.batches.Load(),
		Lines:     c.lines.Load(),
		Failed:    c.failed.Load(),
		Abandoned: c.abandoned.Load(),
	}
}

// Run processes all inputs.  A failing input does not stop the others, the
// errors of all inputs are joined.  Run stops early if ctx is cancelled.
func (r *Runner) Run(ctx context.Context, inputs []string) (Stats, error) {
	var (
		c    counters
		errs = make([]error, len(inputs))
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Concurrency, 1))
	for i, name := range inputs {
		g.Go(func() error {
			if err := r.input(ctx, &c, name); err != nil {
				errs[i] = fmt.Errorf("%s: %w", name, err)
				if errors.Is(err, context.Canceled) {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		errs = append(errs, err)
	}
	return c.stats(), errors.Join(errs...)
}

func (r *Runner) input(ctx context.Context, c *counters, name string) error {
	lg := r.Logger.With().Str("input", name).Logger()
	if err := ctx.Err(); err != nil {
		return err
	}

	rc, err := r.Open(name)
	if err != nil {
		lg.Error().Err(err).Msg("open failed")
		return err
	}
	defer rc.Close()
	c.inputs.Add(1)

	rd := r.NewReader(rc)
	lg.Debug().Int("max_lines", rd.MaxLines()).Msg("reading")

	var (
		seq         int
		consecutive int
		lines       int64
	)
	for batch := range rd.All() {
		seq++
		c.batches.Add(1)
		c.lines.Add(int64(len(batch)))
		lines += int64(len(batch))
		if failed := batch.Failed(); failed > 0 {
			c.failed.Add(int64(failed))
			lg.Warn().Int("seq", seq).Int("failed", failed).Err(batch.Err()).Msg("batch has failed lines")
		}
		if err := r.Emitter.Emit(emit.NewRecord(name, seq, batch)); err != nil {
			return fmt.Errorf("emit: %w", err)
		}

		consecutive = trailingFailures(batch, consecutive)
		if r.MaxErrors > 0 && consecutive >= r.MaxErrors {
			c.abandoned.Add(1)
			lg.Error().Int("consecutive", consecutive).Msg("abandoning input")
			return fmt.Errorf("%w: %d", ErrTooManyErrors, consecutive)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	lg.Info().Int("batches", seq).Int64("lines", lines).Msg("done")
	return nil
}

// trailingFailures returns the number of consecutive failed lines at the end
// of the batch, carrying over the count from the previous batches if the
// whole batch failed.
func trailingFailures(b maxlines.Batch, carried int) int {
	n := carried
	for _, ln := range b {
		if ln.Err != nil {
			n++
		} else {
			n = 0
		}
	}
	return n
}
