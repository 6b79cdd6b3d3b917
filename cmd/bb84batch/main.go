// bb84batch runs a BB84 simulation for each entry in the cartesian
// product of key-length and error-level values, writes a CSV row per
// run, and prints per-configuration summary statistics.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	flag "github.com/spf13/pflag"

	"github.com/FedericoQuartieri/QiskitFallFest-Hackathon-2025/bb84"
	"github.com/FedericoQuartieri/QiskitFallFest-Hackathon-2025/bb84/batch"
	"github.com/FedericoQuartieri/QiskitFallFest-Hackathon-2025/bb84/channel"
	"github.com/FedericoQuartieri/QiskitFallFest-Hackathon-2025/bb84/report"
	"github.com/FedericoQuartieri/QiskitFallFest-Hackathon-2025/internal/logger"
)

var (
	nRange     = flag.IntSlice("n-range", []int{16, 32, 64, 128}, "Key-length values to sweep.")
	errorRange = flag.Float64Slice("error-range", []float64{0, 2, 5, 10, 15, 20, 25, 30}, "Injected error counts to sweep.")
	repeats    = flag.Int("repeats", 1, "Repetitions per configuration.")
	delta      = flag.Float64("delta", bb84.DefaultDelta, "Security margin in (4+delta)*n transmitted qubits.")
	tolerance  = flag.Float64("tolerance", bb84.DefaultTolerance, "Maximum acceptable QBER on the check bits.")
	backend    = flag.String("backend", channel.DefaultBackend, "Channel simulation backend.")
	workers    = flag.Int("workers", 0, "Parallel workers; 0 means one per CPU.")
	seed       = flag.Int64("seed", 0, "Base RNG seed; 0 draws one from the OS.")
	output     = flag.String("output", "bb84_results.csv", "Output CSV path; a .zst suffix compresses it.")
	verbose    = flag.Bool("verbose", false, "Log every completed run.")
)

func main() {
	flag.Parse()
	logger.Setup(os.Stderr)
	if *verbose {
		logger.SetLevel(logger.LevelDebug)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := batch.Params{
		NValues:     *nRange,
		ErrorValues: *errorRange,
		Repeats:     *repeats,
		Delta:       *delta,
		Tolerance:   *tolerance,
		Backend:     *backend,
		Workers:     *workers,
		Seed:        *seed,
	}
	job, err := batch.Run(ctx, p)
	if err != nil && job == nil {
		log.Fatalf("Running batch: %v", err)
	}
	if err != nil {
		logger.Errorf("batch interrupted, writing %d completed runs", len(job.Records))
	}
	if err := report.WriteCSV(*output, job.Records); err != nil {
		log.Fatalf("Writing %s: %v", *output, err)
	}
	logger.Infof("wrote %d records to %s", len(job.Records), *output)

	fmt.Println()
	if err := report.WriteSummary(os.Stdout, report.Summarize(job.Records)); err != nil {
		log.Fatalf("Printing summary: %v", err)
	}
}
