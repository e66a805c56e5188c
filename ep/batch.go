package ep

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/parallelbench/ep/pkg/lcg"
)

// ErrNonFiniteSum is returned when a batch produces a NaN or infinite sum.
var ErrNonFiniteSum = errors.New("non-finite sum")

// Histogram counts accepted Gaussian pairs by the integer part of
// max(|X|, |Y|). The last bin also holds every larger magnitude.
type Histogram [NQ]int64

func (h *Histogram) add(magnitude float64) {
	if !(magnitude < NQ-1) {
		h[NQ-1]++
		return
	}
	h[int(magnitude)]++
}

// Merge adds every bin of o to h.
func (h *Histogram) Merge(o Histogram) {
	for i := range h {
		h[i] += o[i]
	}
}

// Total returns the number of pairs counted.
func (h Histogram) Total() int64 {
	var n int64
	for _, c := range h {
		n += c
	}
	return n
}

// Partial is the result of one batch.
type Partial struct {
	SumX   float64
	SumY   float64
	Counts Histogram
}

func (p Partial) finite() bool {
	return !math.IsNaN(p.SumX) && !math.IsInf(p.SumX, 0) &&
		!math.IsNaN(p.SumY) && !math.IsInf(p.SumY, 0)
}

// Timing holds the time spent in each instrumented phase.
type Timing struct {
	Uniforms  time.Duration `yaml:"uniforms"`
	Gaussians time.Duration `yaml:"gaussians"`
}

func (t *Timing) add(o Timing) {
	t.Uniforms += o.Uniforms
	t.Gaussians += o.Gaussians
}

// Generator produces batches of Gaussian pairs. It is not safe for
// concurrent use; each worker owns one.
type Generator struct {
	params Params
	an     float64
	timers bool
	buf    []float64

	Timing Timing
}

// NewGenerator returns a Generator for the given parameters. an must be the
// batch multiplier for p, see lcg.BatchMultiplier.
func NewGenerator(p Params, an float64, timers bool) *Generator {
	return &Generator{
		params: p,
		an:     an,
		timers: timers,
		buf:    make([]float64, 2*p.BatchSize),
	}
}

// Batch generates the batch starting at *seed and advances *seed to the
// start of the following batch.
func (g *Generator) Batch(seed *float64) Partial {
	var start time.Time
	if g.timers {
		start = time.Now()
	}

	lcg.Fill(seed, g.params.Multiplier, g.buf)

	if g.timers {
		now := time.Now()
		g.Timing.Uniforms += now.Sub(start)
		start = now
	}

	// Acceptance-rejection: pairs outside the unit disk are dropped.
	var p Partial
	for i := 0; i < len(g.buf); i += 2 {
		x1 := 2*g.buf[i] - 1
		x2 := 2*g.buf[i+1] - 1
		t := float64(x1*x1) + float64(x2*x2)
		if t > 1 {
			continue
		}

		s := math.Sqrt(-2 * math.Log(t) / t)
		gx, gy := x1*s, x2*s
		p.Counts.add(math.Max(math.Abs(gx), math.Abs(gy)))
		p.SumX += gx
		p.SumY += gy
	}

	if g.timers {
		g.Timing.Gaussians += time.Since(start)
	}

	return p
}

// Sum is the pair of sums of one batch.
type Sum struct {
	X, Y float64
}

// SpanResult is what one worker delivers for its span: one Sum per batch in
// batch order, and the merged histogram.
type SpanResult struct {
	Span   Span
	Sums   []Sum
	Counts Histogram
	Timing Timing
}

// seedFor derives the seed of a batch by skipping ahead. The time it takes
// counts as uniform generation.
func (g *Generator) seedFor(batch int) (float64, error) {
	var start time.Time
	if g.timers {
		start = time.Now()
	}

	seed := lcg.SeedAt(g.params.Seed, g.an, int64(batch))

	if g.timers {
		g.Timing.Uniforms += time.Since(start)
	}

	if err := lcg.Validate(seed); err != nil {
		return 0, errors.Wrapf(err, "seed for batch %d", batch)
	}
	return seed, nil
}

// Range generates every batch of s. The seed is derived once for the first
// batch and then advanced sequentially.
func (g *Generator) Range(s Span) (SpanResult, error) {
	res := SpanResult{
		Span: s,
		Sums: make([]Sum, s.Count),
	}
	if s.Count == 0 {
		return res, nil
	}

	seed, err := g.seedFor(s.First)
	if err != nil {
		return res, err
	}

	for i := range res.Sums {
		p := g.Batch(&seed)
		if !p.finite() {
			return res, errors.Wrapf(ErrNonFiniteSum, "batch %d", s.First+i)
		}
		res.Sums[i] = Sum{X: p.SumX, Y: p.SumY}
		res.Counts.Merge(p.Counts)
	}

	res.Timing = g.Timing
	recordSpan(s.Count, g.timers, g.Timing)
	return res, nil
}
