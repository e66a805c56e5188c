package ep

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spanOf(first int, sums ...Sum) SpanResult {
	var h Histogram
	h[0] = int64(len(sums))
	return SpanResult{
		Span:   Span{First: first, Count: len(sums)},
		Sums:   sums,
		Counts: h,
	}
}

func TestReduceFoldsInBatchOrder(t *testing.T) {
	spans := []SpanResult{
		spanOf(2, Sum{1e16, 0}, Sum{-1e16, 0}),
		spanOf(0, Sum{1, 1}, Sum{2, 2}),
		spanOf(4),
		spanOf(4, Sum{0.5, -3}),
	}

	r := &Result{Params: Params{TotalBatches: 5}}
	require.Nil(t, Reduce(r, spans))

	// (((1 + 2) + 1e16) - 1e16) + 0.5 in float64.
	want := 1.0 + 2.0
	want += 1e16
	want -= 1e16
	want += 0.5
	assert.Equal(t, want, r.SumX)
	assert.Equal(t, 0.0, r.SumY)
	assert.Equal(t, int64(5), r.Pairs)
	assert.Equal(t, int64(5), r.Counts[0])

	// Input order does not matter.
	r2 := &Result{Params: Params{TotalBatches: 5}}
	require.Nil(t, Reduce(r2, []SpanResult{spans[3], spans[0], spans[1]}))
	assert.Equal(t, r.SumX, r2.SumX)
	assert.Equal(t, r.Counts, r2.Counts)
}

func TestReduceDetectsGapsAndOverlaps(t *testing.T) {
	var table = []struct {
		name  string
		spans []SpanResult
	}{
		{"gap", []SpanResult{spanOf(0, Sum{}), spanOf(2, Sum{})}},
		{"overlap", []SpanResult{spanOf(0, Sum{}, Sum{}), spanOf(1, Sum{}, Sum{})}},
		{"short", []SpanResult{spanOf(0, Sum{}, Sum{})}},
		{"long", []SpanResult{spanOf(0, Sum{}, Sum{}, Sum{}, Sum{})}},
		{"missing sums", []SpanResult{{Span: Span{First: 0, Count: 3}}}},
	}

	for _, tt := range table {
		r := &Result{Params: Params{TotalBatches: 3}}
		err := Reduce(r, tt.spans)
		assert.True(t, errors.Is(err, ErrIncompleteReduction), tt.name)
	}
}

func TestReduceAveragesTimings(t *testing.T) {
	a := spanOf(0, Sum{})
	a.Timing = Timing{Uniforms: 2 * time.Second, Gaussians: 4 * time.Second}
	b := spanOf(1, Sum{})
	b.Timing = Timing{Uniforms: 4 * time.Second, Gaussians: 2 * time.Second}

	r := &Result{Params: Params{TotalBatches: 2}, Timers: true}
	require.Nil(t, Reduce(r, []SpanResult{a, b}))
	assert.Equal(t, Timing{Uniforms: 3 * time.Second, Gaussians: 3 * time.Second}, r.Timing)

	r = &Result{Params: Params{TotalBatches: 2}}
	require.Nil(t, Reduce(r, []SpanResult{a, b}))
	assert.Equal(t, Timing{}, r.Timing)
}

func TestResultMops(t *testing.T) {
	r := &Result{Params: Params{Exponent: 24}, Elapsed: 2 * time.Second}
	assert.Equal(t, float64(int64(1)<<25)/2/1e6, r.Mops())
	assert.Equal(t, 0, r.Iterations())

	r.Elapsed = 0
	assert.Equal(t, 0.0, r.Mops())
}

func TestDigest(t *testing.T) {
	r1 := &Result{SumX: 1.5, SumY: -2, Counts: Histogram{1, 2}}
	r2 := &Result{SumX: 1.5, SumY: -2, Counts: Histogram{1, 2}}
	assert.Equal(t, r1.Digest(), r2.Digest())
	assert.Len(t, r1.Digest(), 64)

	r2.Counts[9]++
	assert.NotEqual(t, r1.Digest(), r2.Digest())
}
