package ep

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallelbench/ep/pkg/lcg"
)

func run(t *testing.T, cfg Config) *Result {
	b, err := New(cfg)
	require.Nil(t, err)
	r, err := b.Run()
	require.Nil(t, err)
	require.Equal(t, StateReport, b.State())
	return r
}

func assertClose(t *testing.T, want, got float64) {
	assert.True(t, math.Abs((got-want)/want) <= Epsilon, "want %.15f, got %.15f", want, got)
}

func TestClassS(t *testing.T) {
	r := run(t, Config{Class: "S", Workers: 4})

	assert.Equal(t, "S", r.Class)
	assert.Equal(t, 24, r.Exponent)
	assert.Equal(t, 256, r.TotalBatches)
	assert.Equal(t, 1<<16, r.BatchSize)
	assertClose(t, -3247.834652034740, r.SumX)
	assertClose(t, -6958.407078382297, r.SumY)
	assert.Equal(t, Successful, r.Verification)

	assert.Equal(t, Histogram{6140517, 5865300, 1100361, 68546, 1648, 17}, r.Counts)
	assert.Equal(t, int64(13176389), r.Pairs)
	assert.True(t, r.Pairs <= int64(r.BatchSize)*int64(r.TotalBatches))
	assert.True(t, r.Pairs > 0)
	assert.True(t, r.Mops() > 0)
	assert.Equal(t, 0, r.Iterations())
}

func TestLargerClasses(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping larger classes in short mode")
	}

	var table = []struct {
		class    string
		sumX     float64
		sumY     float64
		exponent int
	}{
		{"W", -2863.319731645753, -6320.053679109499, 25},
		{"A", -4295.875165629892, -15807.32573678431, 28},
	}

	for _, tt := range table {
		r := run(t, Config{Class: tt.class})
		assert.Equal(t, tt.exponent, r.Exponent)
		assertClose(t, tt.sumX, r.SumX)
		assertClose(t, tt.sumY, r.SumY)
		assert.Equal(t, Successful, r.Verification, tt.class)
	}
}

func TestResultIndependentOfWorkerCount(t *testing.T) {
	base := run(t, Config{Class: "S", Workers: 1})

	// 3 leaves a remainder and 300 exceeds the 256 batches.
	for _, workers := range []int{2, 3, 8, 300} {
		r := run(t, Config{Class: "S", Workers: workers})
		assert.Equal(t, workers, r.Workers)
		assert.Equal(t, base.SumX, r.SumX, "workers = %d", workers)
		assert.Equal(t, base.SumY, r.SumY, "workers = %d", workers)
		assert.Equal(t, base.Counts, r.Counts, "workers = %d", workers)
		assert.Equal(t, base.Digest(), r.Digest(), "workers = %d", workers)
	}
}

func TestSkipAheadMatchesSequentialBatches(t *testing.T) {
	b, err := New(Config{Exponent: 20, BatchExponent: 10, Workers: 1})
	require.Nil(t, err)
	p := b.Params()
	an := lcg.BatchMultiplier(p.Multiplier, uint(p.BatchExponent))

	buf := make([]float64, 2*p.BatchSize)
	seed := p.Seed
	for k := 0; k < p.TotalBatches; k++ {
		require.Equal(t, seed, lcg.SeedAt(p.Seed, an, int64(k)), "batch %d", k)
		lcg.Fill(&seed, p.Multiplier, buf)
	}
}

func TestUnknownExponentNotVerified(t *testing.T) {
	r := run(t, Config{Exponent: 20, Workers: 2})
	assert.Equal(t, "U", r.Class)
	assert.Equal(t, 16, r.TotalBatches)
	assert.Equal(t, NotPerformed, r.Verification)
}

func TestTimers(t *testing.T) {
	r := run(t, Config{Exponent: 20, Workers: 2, Timers: true})
	assert.True(t, r.Timers)
	assert.True(t, r.Timing.Uniforms > 0)
	assert.True(t, r.Timing.Gaussians > 0)
	assert.True(t, r.Timing.Uniforms+r.Timing.Gaussians <= r.Elapsed)
}

func TestRunOnce(t *testing.T) {
	b, err := New(Config{Exponent: 18, Workers: 1})
	require.Nil(t, err)

	_, err = b.Run()
	require.Nil(t, err)

	_, err = b.Run()
	assert.Equal(t, ErrAlreadyRun, err)
}

func TestWorkerFailureAbortsRun(t *testing.T) {
	fail := errors.New("boom")

	var table = []struct {
		name     string
		generate rangeFunc
	}{
		{"error", func(g *Generator, s Span) (SpanResult, error) {
			if s.First > 0 {
				return SpanResult{}, fail
			}
			return g.Range(s)
		}},
		{"panic", func(g *Generator, s Span) (SpanResult, error) {
			if s.First > 0 {
				panic("precondition violated")
			}
			return g.Range(s)
		}},
	}

	for _, tt := range table {
		b, err := New(Config{Exponent: 20, Workers: 4})
		require.Nil(t, err)
		b.generate = tt.generate

		r, err := b.Run()
		assert.Nil(t, r, tt.name)
		assert.True(t, errors.Is(err, ErrWorkerFailure), tt.name)
		assert.Equal(t, StateParallelGenerate, b.State(), tt.name)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg, err := Config{}.Validate()
	require.Nil(t, err)
	assert.Equal(t, "S", cfg.Class)
	assert.Equal(t, 24, cfg.Exponent)
	assert.Equal(t, DefaultBatchExponent, cfg.BatchExponent)
	assert.True(t, cfg.Workers > 0)
	assert.Equal(t, DefaultSeed, cfg.Seed)
	assert.Equal(t, DefaultMultiplier, cfg.Multiplier)

	cfg, err = Config{Exponent: 28}.Validate()
	require.Nil(t, err)
	assert.Equal(t, "A", cfg.Class)

	cfg, err = Config{Class: "E"}.Validate()
	require.Nil(t, err)
	assert.Equal(t, MaxTotalBatches, paramsFor(cfg).TotalBatches)

	var table = []struct {
		cfg      Config
		expected error
	}{
		{Config{Class: "Q"}, ErrUnknownClass},
		{Config{Exponent: 10}, ErrInvalidExponent},
		{Config{Exponent: 44}, ErrInvalidExponent},
		{Config{BatchExponent: 31}, ErrInvalidBatchExponent},
		{Config{BatchExponent: -1}, ErrInvalidBatchExponent},
		{Config{Class: "E", BatchExponent: 1}, ErrTooManyBatches},
		{Config{Exponent: 43, BatchExponent: 18}, ErrTooManyBatches},
		{Config{Workers: -1}, ErrInvalidWorkers},
		{Config{Seed: 2}, lcg.ErrInvalidSeed},
		{Config{Multiplier: 1 << 46}, lcg.ErrInvalidSeed},
	}

	for _, tt := range table {
		_, err := tt.cfg.Validate()
		assert.True(t, errors.Is(err, tt.expected), "%+v: %v", tt.cfg, err)
		assert.Equal(t, tt.expected, errors.Cause(err), "%+v: %v", tt.cfg, err)
	}
}
