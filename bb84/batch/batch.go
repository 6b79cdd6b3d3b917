// Package batch drives the BB84 engine across a cross product of
// parameter values and collects one result record per run.
//
// Runs are independent, so the harness farms them out to a worker
// pool; records still land in deterministic nested order (key length,
// then error level, then repeat index) because each configuration owns
// a fixed slot in the output. A run that fails to execute is recorded
// as a failed record rather than aborting the batch.
package batch

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FedericoQuartieri/QiskitFallFest-Hackathon-2025/bb84"
	"github.com/FedericoQuartieri/QiskitFallFest-Hackathon-2025/bb84/channel"
	"github.com/FedericoQuartieri/QiskitFallFest-Hackathon-2025/bb84/report"
	"github.com/FedericoQuartieri/QiskitFallFest-Hackathon-2025/internal/logger"
)

// Params describes a batch: the sweep dimensions plus the parameters
// shared by every run.
type Params struct {
	// NValues and ErrorValues are the sweep dimensions; Repeats is how
	// many times each (n, errors) cell runs. The batch size is
	// len(NValues) * len(ErrorValues) * Repeats.
	NValues     []int
	ErrorValues []float64
	Repeats     int

	// Shared single-run parameters.
	Delta     float64
	Tolerance float64
	Backend   string

	// Workers bounds run parallelism. Zero means GOMAXPROCS.
	Workers int

	// Seed makes the batch reproducible: run i draws from a source
	// seeded with Seed + i. Zero draws a fresh base seed from the OS.
	Seed int64

	// runFunc stubs out the engine in tests. nil means bb84.Run.
	runFunc func(bb84.Config) (bb84.Result, error)
}

// Validate reports whether p describes a well-formed batch.
func (p Params) Validate() error {
	if len(p.NValues) == 0 {
		return fmt.Errorf("must provide at least one key-length value")
	}
	if len(p.ErrorValues) == 0 {
		return fmt.Errorf("must provide at least one error value")
	}
	if p.Repeats <= 0 {
		return fmt.Errorf("repeats must be positive, got %d", p.Repeats)
	}
	for _, n := range p.NValues {
		if n <= 0 {
			return fmt.Errorf("target key length must be positive, got %d", n)
		}
	}
	for _, e := range p.ErrorValues {
		if e < 0 {
			return fmt.Errorf("injected error count must be non-negative, got %g", e)
		}
	}
	if p.Delta < 0 {
		return fmt.Errorf("security margin must be non-negative, got %g", p.Delta)
	}
	if p.Tolerance < 0 || p.Tolerance > 1 {
		return fmt.Errorf("tolerance must lie in [0, 1], got %g", p.Tolerance)
	}
	if _, err := channel.New(channel.Config{Backend: p.Backend}); err != nil {
		return err
	}
	return nil
}

// Size returns the number of runs the batch performs.
func (p Params) Size() int {
	return len(p.NValues) * len(p.ErrorValues) * p.Repeats
}

// A Job is one executed batch: its identity, parameters, and the
// records of every run, in sweep order. Records are appended once and
// never edited.
type Job struct {
	ID      uuid.UUID
	Started time.Time
	Params  Params
	Records []report.Record
}

// Run executes the batch. The context is consulted between runs, not
// mid-run: cancellation stops scheduling further configurations and
// returns the records completed so far along with ctx's error.
func Run(ctx context.Context, p Params) (*Job, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid batch: %w", err)
	}

	seed := p.Seed
	if seed == 0 {
		seed = bb84.RandomSeed()
	}
	run := p.runFunc
	if run == nil {
		run = bb84.Run
	}
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	job := &Job{ID: uuid.New(), Started: time.Now(), Params: p}
	configs := p.configs()
	records := make([]report.Record, len(configs))
	logger.Infof("batch %s: %d runs across %d workers", job.ID, len(configs), workers)

	idx := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				cfg := configs[i]
				cfg.Rand = rand.New(rand.NewSource(seed + int64(i)))
				records[i] = runOne(run, cfg)
				logger.Debugf("run %d/%d: n=%d errors=%g repeat=%d %s",
					i+1, len(configs), cfg.N, cfg.Errors, cfg.Repeat, records[i].Status)
			}
		}()
	}

	scheduled := 0
feed:
	for i := range configs {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break feed
		case idx <- i:
			scheduled++
		}
	}
	close(idx)
	wg.Wait()

	job.Records = records[:scheduled]
	if err := ctx.Err(); err != nil {
		logger.Errorf("batch %s cancelled after %d of %d runs", job.ID, scheduled, len(configs))
		return job, err
	}
	return job, nil
}

// configs expands the sweep into the full ordered list of run
// configurations: key length outermost, then error level, then repeat.
func (p Params) configs() []bb84.Config {
	configs := make([]bb84.Config, 0, p.Size())
	for _, n := range p.NValues {
		for _, errs := range p.ErrorValues {
			for rep := 1; rep <= p.Repeats; rep++ {
				configs = append(configs, bb84.Config{
					N:         n,
					Delta:     p.Delta,
					Tolerance: p.Tolerance,
					Errors:    errs,
					Backend:   p.Backend,
					Repeat:    rep,
				})
			}
		}
	}
	return configs
}

// runOne executes a single configuration, converting execution faults
// (including panics in the simulation backend) into failed records so
// one bad run cannot lose the batch.
func runOne(run func(bb84.Config) (bb84.Result, error), cfg bb84.Config) (rec report.Record) {
	rec.Timestamp = time.Now()
	defer func() {
		if r := recover(); r != nil {
			rec.Result = failedResult(cfg)
			rec.Error = fmt.Sprintf("panic: %v", r)
		}
	}()
	res, err := run(cfg)
	if err != nil {
		rec.Result = failedResult(cfg)
		rec.Error = err.Error()
		return rec
	}
	rec.Result = res
	return rec
}

func failedResult(cfg bb84.Config) bb84.Result {
	return bb84.Result{
		Status:    bb84.StatusError,
		N:         cfg.N,
		Delta:     cfg.Delta,
		Tolerance: cfg.Tolerance,
		Errors:    cfg.Errors,
		Backend:   cfg.Backend,
		Repeat:    cfg.Repeat,
	}
}
