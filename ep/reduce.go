package ep

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/parallelbench/ep/pkg/log"
)

// ErrIncompleteReduction is returned when the delivered spans do not cover
// every batch exactly once.
var ErrIncompleteReduction = errors.New("spans do not cover the batch range")

// Result is the merged outcome of a run.
type Result struct {
	Params

	Workers int
	SumX    float64
	SumY    float64
	Counts  Histogram
	Pairs   int64
	Elapsed time.Duration

	// Timing is the per-worker average of each phase. It is only set when
	// timers were requested.
	Timers bool
	Timing Timing

	Verification Verification
}

// Iterations is always zero for this benchmark.
func (r *Result) Iterations() int {
	return 0
}

// Mops returns the throughput in millions of uniforms per second.
func (r *Result) Mops() float64 {
	secs := r.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(r.Size()) / secs / 1e6
}

// LogFields renders the result as a set of Logrus fields.
func (r *Result) LogFields() log.Fields {
	return log.Fields{
		"class":        r.Class,
		"exponent":     r.Exponent,
		"workers":      r.Workers,
		"sumX":         r.SumX,
		"sumY":         r.SumY,
		"pairs":        r.Pairs,
		"elapsed":      r.Elapsed,
		"mops":         r.Mops(),
		"verification": r.Verification.String(),
	}
}

// Reduce merges the span results of every worker into r. Sums are folded in
// ascending batch order, so the totals do not depend on how the batches were
// partitioned.
func Reduce(r *Result, spans []SpanResult) error {
	sorted := make([]SpanResult, 0, len(spans))
	for _, s := range spans {
		if s.Span.Count > 0 {
			sorted = append(sorted, s)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Span.First < sorted[j].Span.First
	})

	next := 0
	for _, s := range sorted {
		if s.Span.First != next || len(s.Sums) != s.Span.Count {
			return errors.Wrapf(ErrIncompleteReduction, "expected batch %d, got span %d+%d", next, s.Span.First, s.Span.Count)
		}
		next = s.Span.End()
	}
	if next != r.TotalBatches {
		return errors.Wrapf(ErrIncompleteReduction, "covered %d of %d batches", next, r.TotalBatches)
	}

	var sx, sy float64
	var counts Histogram
	var timing Timing
	for _, s := range sorted {
		for _, sum := range s.Sums {
			sx += sum.X
			sy += sum.Y
		}
		counts.Merge(s.Counts)
		timing.add(s.Timing)
	}

	r.SumX, r.SumY = sx, sy
	r.Counts = counts
	r.Pairs = counts.Total()

	if r.Timers && len(sorted) > 0 {
		n := time.Duration(len(sorted))
		r.Timing = Timing{
			Uniforms:  timing.Uniforms / n,
			Gaussians: timing.Gaussians / n,
		}
	}

	return nil
}
