package main

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/parallelbench/ep/ep"
)

const operationType = "Random numbers generated"

// buildInfo is set at link time, see main.go.
type buildInfo struct {
	Version   string `yaml:"version"`
	BuildDate string `yaml:"build_date"`
}

type phaseReport struct {
	Seconds float64 `yaml:"seconds"`
	Percent float64 `yaml:"percent"`
}

type timingReport struct {
	Total     float64     `yaml:"total_seconds"`
	Gaussians phaseReport `yaml:"gaussian_pairs"`
	Uniforms  phaseReport `yaml:"random_numbers"`
}

type report struct {
	Benchmark     string          `yaml:"benchmark"`
	Class         string          `yaml:"class"`
	Exponent      int             `yaml:"exponent"`
	Size          int64           `yaml:"size"`
	Workers       int             `yaml:"total_threads"`
	Iterations    int             `yaml:"iterations"`
	Seconds       float64         `yaml:"time_seconds"`
	Mops          float64         `yaml:"mops_total"`
	OperationType string          `yaml:"operation_type"`
	GaussianPairs int64           `yaml:"gaussian_pairs"`
	SumX          float64         `yaml:"sum_x"`
	SumY          float64         `yaml:"sum_y"`
	Counts        []int64         `yaml:"counts"`
	Verification  ep.Verification `yaml:"verification"`
	Digest        string          `yaml:"digest"`
	Build         buildInfo       `yaml:"build"`
	Timing        *timingReport   `yaml:"timing,omitempty"`
}

func percent(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total * 100
}

func newReport(r *ep.Result, info buildInfo) report {
	rep := report{
		Benchmark:     "EP",
		Class:         r.Class,
		Exponent:      r.Exponent,
		Size:          r.Size(),
		Workers:       r.Workers,
		Iterations:    r.Iterations(),
		Seconds:       r.Elapsed.Seconds(),
		Mops:          r.Mops(),
		OperationType: operationType,
		GaussianPairs: r.Pairs,
		SumX:          r.SumX,
		SumY:          r.SumY,
		Counts:        r.Counts[:],
		Verification:  r.Verification,
		Digest:        r.Digest(),
		Build:         info,
	}

	if r.Timers {
		total := r.Elapsed.Seconds()
		g, u := r.Timing.Gaussians.Seconds(), r.Timing.Uniforms.Seconds()
		rep.Timing = &timingReport{
			Total:     total,
			Gaussians: phaseReport{Seconds: g, Percent: percent(g, total)},
			Uniforms:  phaseReport{Seconds: u, Percent: percent(u, total)},
		}
	}

	return rep
}

func writeYAML(w io.Writer, r *ep.Result, info buildInfo) error {
	out, err := yaml.Marshal(newReport(r, info))
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func writeText(w io.Writer, r *ep.Result, info buildInfo) error {
	rep := newReport(r, info)
	var b strings.Builder

	fmt.Fprintf(&b, "\n\n NAS Parallel Benchmarks (Go) - EP Benchmark\n\n")
	fmt.Fprintf(&b, " Number of random numbers generated: %d\n", rep.Size)
	fmt.Fprintf(&b, " Number of workers:                  %d\n", rep.Workers)

	fmt.Fprintf(&b, "\n EP Benchmark Results:\n\n")
	fmt.Fprintf(&b, " CPU Time           = %16.4f\n", rep.Seconds)
	fmt.Fprintf(&b, " N                  = %16s\n", fmt.Sprintf("2^%d", rep.Exponent))
	fmt.Fprintf(&b, " No. Gaussian Pairs = %16d\n", rep.GaussianPairs)
	fmt.Fprintf(&b, " Sums               = %25.15e %25.15e\n", rep.SumX, rep.SumY)
	fmt.Fprintf(&b, " Counts:\n")
	for i := 0; i < ep.NQ-1; i++ {
		fmt.Fprintf(&b, "  %3d %15d\n", i, rep.Counts[i])
	}

	fmt.Fprintf(&b, "\n\n %s Benchmark Completed\n", rep.Benchmark)
	fmt.Fprintf(&b, " Class           = %30s\n", rep.Class)
	fmt.Fprintf(&b, " Size            = %30d\n", rep.Size)
	fmt.Fprintf(&b, " Total threads   = %30d\n", rep.Workers)
	fmt.Fprintf(&b, " Iterations      = %30d\n", rep.Iterations)
	fmt.Fprintf(&b, " Time in seconds = %30.2f\n", rep.Seconds)
	fmt.Fprintf(&b, " Mop/s total     = %30.2f\n", rep.Mops)
	fmt.Fprintf(&b, " Operation type  = %30s\n", rep.OperationType)
	fmt.Fprintf(&b, " Verification    = %30s\n", rep.Verification)
	fmt.Fprintf(&b, " Version         = %30s\n", rep.Build.Version)
	fmt.Fprintf(&b, " Build date      = %30s\n", rep.Build.BuildDate)
	fmt.Fprintf(&b, " Digest          = %s\n", rep.Digest)

	if t := rep.Timing; t != nil {
		fmt.Fprintf(&b, "\n Total time:     %.6f (100.00%%)\n", t.Total)
		fmt.Fprintf(&b, " Gaussian pairs: %.6f (%6.2f%%)\n", t.Gaussians.Seconds, t.Gaussians.Percent)
		fmt.Fprintf(&b, " Random numbers: %.6f (%6.2f%%)\n", t.Uniforms.Seconds, t.Uniforms.Percent)
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}
