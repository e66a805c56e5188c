package ep

// Span is a contiguous range of batch indices [First, First+Count).
type Span struct {
	First int `yaml:"first"`
	Count int `yaml:"count"`
}

// End returns the index one past the last batch of s.
func (s Span) End() int {
	return s.First + s.Count
}

// Partition splits [0, total) into workers contiguous spans. The first
// total%workers spans get one extra batch, so every batch is covered exactly
// once. Spans may be empty when workers > total.
//
// Partition panics if workers <= 0 or total < 0.
func Partition(total, workers int) []Span {
	if workers <= 0 {
		panic("ep: invalid worker count")
	}
	if total < 0 {
		panic("ep: negative batch count")
	}

	per, extra := total/workers, total%workers
	spans := make([]Span, workers)
	first := 0
	for i := range spans {
		n := per
		if i < extra {
			n++
		}
		spans[i] = Span{First: first, Count: n}
		first += n
	}
	return spans
}
