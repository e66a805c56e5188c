// Package ep implements the NAS "embarrassingly parallel" benchmark kernel:
// Gaussian pairs generated from a skip-ahead linear congruential stream,
// partitioned across workers and reduced in a fixed order so the result is
// independent of the worker count.
package ep

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/parallelbench/ep/pkg/lcg"
	"github.com/parallelbench/ep/pkg/log"
)

// State is a step of a benchmark run.
type State int

// A run moves through the states in order and never re-enters one.
const (
	StateInit State = iota
	StateSkipAheadSetup
	StateParallelGenerate
	StateReduce
	StateVerify
	StateReport
)

var stateNames = [...]string{
	StateInit:             "init",
	StateSkipAheadSetup:   "skip-ahead setup",
	StateParallelGenerate: "parallel generate",
	StateReduce:           "reduce",
	StateVerify:           "verify",
	StateReport:           "report",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	// ErrAlreadyRun is returned by Run on a Benchmark that already ran.
	ErrAlreadyRun = errors.New("benchmark already ran")

	// ErrWorkerFailure wraps any error or panic raised inside a worker.
	ErrWorkerFailure = errors.New("worker failed")
)

type rangeFunc func(g *Generator, s Span) (SpanResult, error)

// Benchmark is a single run of the EP kernel.
type Benchmark struct {
	cfg    Config
	params Params

	mu    sync.Mutex
	state State

	generate rangeFunc
}

// New validates cfg and returns a Benchmark ready to Run.
func New(cfg Config) (*Benchmark, error) {
	validcfg, err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &Benchmark{
		cfg:      validcfg,
		params:   paramsFor(validcfg),
		generate: (*Generator).Range,
	}, nil
}

// Config returns the validated configuration.
func (b *Benchmark) Config() Config {
	return b.cfg
}

// Params returns the sizes derived from the configuration.
func (b *Benchmark) Params() Params {
	return b.params
}

// State returns the current state of the run.
func (b *Benchmark) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Benchmark) enter(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
	log.Debug("ep: entering state", log.Fields{"state": s.String()})
}

// Run executes the benchmark to completion. Any worker failure aborts the
// run and no result is returned. Run may only be called once.
func (b *Benchmark) Run() (*Result, error) {
	b.mu.Lock()
	if b.state != StateInit {
		b.mu.Unlock()
		return nil, ErrAlreadyRun
	}
	b.state = StateSkipAheadSetup
	b.mu.Unlock()

	warmUp(b.params.Multiplier)

	start := time.Now()

	log.Debug("ep: entering state", log.Fields{"state": StateSkipAheadSetup.String()})
	an := lcg.BatchMultiplier(b.params.Multiplier, uint(b.params.BatchExponent))

	b.enter(StateParallelGenerate)
	spans, err := b.runWorkers(an)
	if err != nil {
		return nil, err
	}

	b.enter(StateReduce)
	r := &Result{
		Params:  b.params,
		Workers: b.cfg.Workers,
		Timers:  b.cfg.Timers,
	}
	if err := Reduce(r, spans); err != nil {
		return nil, err
	}
	r.Elapsed = time.Since(start)

	b.enter(StateVerify)
	r.Verification = Verify(r.Exponent, r.SumX, r.SumY)
	recordRun(r.Pairs, r.Elapsed)

	b.enter(StateReport)
	return r, nil
}

// warmUp touches the generator before the timer starts.
func warmUp(a float64) {
	x := 1.0
	lcg.Fill(&x, a, nil)
	lcg.Step(&x, a)
}

type workerResult struct {
	worker int
	res    SpanResult
	err    error
}

// runWorkers fans the batch range out over one goroutine per non-empty span
// and blocks until all of them delivered.
func (b *Benchmark) runWorkers(an float64) ([]SpanResult, error) {
	spans := Partition(b.params.TotalBatches, b.cfg.Workers)
	results := make(chan workerResult, len(spans))

	var wg sync.WaitGroup
	for i, s := range spans {
		if s.Count == 0 {
			continue
		}

		wg.Add(1)
		go func(worker int, s Span) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results <- workerResult{worker: worker, err: fmt.Errorf("panic: %v", r)}
				}
			}()

			log.Debug("ep: worker started", log.Fields{"worker": worker, "first": s.First, "count": s.Count})
			g := NewGenerator(b.params, an, b.cfg.Timers)
			res, err := b.generate(g, s)
			results <- workerResult{worker: worker, res: res, err: err}
		}(i, s)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var collected []SpanResult
	var failure error
	for wr := range results {
		if wr.err != nil {
			if failure == nil {
				failure = errors.Wrapf(ErrWorkerFailure, "worker %d: %v", wr.worker, wr.err)
			}
			continue
		}
		collected = append(collected, wr.res)
	}
	if failure != nil {
		return nil, failure
	}

	return collected, nil
}
