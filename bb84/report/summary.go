package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"gonum.org/v1/gonum/stat"

	"github.com/FedericoQuartieri/QiskitFallFest-Hackathon-2025/bb84"
)

// A GroupSummary aggregates the runs sharing one (n, errors) cell of a
// parameter sweep.
type GroupSummary struct {
	N      int
	Errors float64

	Runs      int
	Successes int
	Aborts    int
	Failures  int

	// SuccessRate is Successes / Runs.
	SuccessRate float64

	// MeanQBER and StdDevQBER describe the runs whose QBER was defined.
	// QBERRuns counts them; when it is zero the moments are NaN-free
	// zeros.
	QBERRuns   int
	MeanQBER   float64
	StdDevQBER float64

	// KeyMatchRate is the fraction of successful runs whose two parties
	// derived identical key bits.
	KeyMatchRate float64
}

// Summarize groups records by (n, errors) and computes per-group
// statistics. Groups appear in first-encounter order, which for batch
// output is the sweep's nested configuration order.
func Summarize(records []Record) []GroupSummary {
	type key struct {
		n      int
		errors float64
	}
	index := make(map[key]int)
	var groups []GroupSummary
	qbers := make(map[key][]float64)
	matches := make(map[key]int)
	for _, r := range records {
		k := key{r.N, r.Errors}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, GroupSummary{N: r.N, Errors: r.Errors})
		}
		g := &groups[i]
		g.Runs++
		switch r.Status {
		case bb84.StatusSuccess:
			g.Successes++
			if r.KeysMatch {
				matches[k]++
			}
		case bb84.StatusAbort:
			g.Aborts++
		default:
			g.Failures++
		}
		if r.HasQBER {
			qbers[k] = append(qbers[k], r.QBER)
		}
	}
	for k, i := range index {
		g := &groups[i]
		g.SuccessRate = float64(g.Successes) / float64(g.Runs)
		if qs := qbers[k]; len(qs) > 0 {
			g.QBERRuns = len(qs)
			g.MeanQBER = stat.Mean(qs, nil)
			if len(qs) > 1 {
				g.StdDevQBER = stat.StdDev(qs, nil)
			}
		}
		if g.Successes > 0 {
			g.KeyMatchRate = float64(matches[k]) / float64(g.Successes)
		}
	}
	return groups
}

// WriteSummary renders a human-readable table of group summaries to w.
func WriteSummary(w io.Writer, groups []GroupSummary) error {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "n\terrors\truns\tsuccess\tmean qber\tstddev qber\tkey match")
	for _, g := range groups {
		qber, stddev := "-", "-"
		if g.QBERRuns > 0 {
			qber = fmt.Sprintf("%.4f", g.MeanQBER)
			stddev = fmt.Sprintf("%.4f", g.StdDevQBER)
		}
		fmt.Fprintf(tw, "%d\t%g\t%d\t%.1f%%\t%s\t%s\t%.1f%%\n",
			g.N, g.Errors, g.Runs, 100*g.SuccessRate, qber, stddev, 100*g.KeyMatchRate)
	}
	return tw.Flush()
}
