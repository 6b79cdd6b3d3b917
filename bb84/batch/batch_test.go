package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/FedericoQuartieri/QiskitFallFest-Hackathon-2025/bb84"
)

func TestParamsValidate(t *testing.T) {
	valid := Params{NValues: []int{16}, ErrorValues: []float64{0}, Repeats: 1, Tolerance: 0.11}
	tcs := []struct {
		name string
		mod  func(p Params) Params
		ok   bool
	}{
		{"valid", func(p Params) Params { return p }, true},
		{"no n values", func(p Params) Params { p.NValues = nil; return p }, false},
		{"no error values", func(p Params) Params { p.ErrorValues = nil; return p }, false},
		{"zero repeats", func(p Params) Params { p.Repeats = 0; return p }, false},
		{"bad n", func(p Params) Params { p.NValues = []int{16, 0}; return p }, false},
		{"bad errors", func(p Params) Params { p.ErrorValues = []float64{-1}; return p }, false},
		{"bad delta", func(p Params) Params { p.Delta = -1; return p }, false},
		{"bad tolerance", func(p Params) Params { p.Tolerance = 2; return p }, false},
		{"bad backend", func(p Params) Params { p.Backend = "bogus"; return p }, false},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.mod(valid).Validate()
			if tc.ok && err != nil {
				t.Errorf("Validate() == %v, want nil", err)
			}
			if !tc.ok && err == nil {
				t.Errorf("Validate() == nil, want error")
			}
		})
	}
}

// A 2x2x2 sweep must yield exactly 8 records in nested order: n
// outermost, then errors, then repeat.
func TestSweepOrder(t *testing.T) {
	p := Params{
		NValues:     []int{16, 32},
		ErrorValues: []float64{0, 10},
		Repeats:     2,
		Delta:       bb84.DefaultDelta,
		Tolerance:   bb84.DefaultTolerance,
		Workers:     4,
		Seed:        1,
	}
	job, err := Run(context.Background(), p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(job.Records) != 8 {
		t.Fatalf("got %d records, want 8", len(job.Records))
	}
	want := []struct {
		n      int
		errors float64
		repeat int
	}{
		{16, 0, 1}, {16, 0, 2}, {16, 10, 1}, {16, 10, 2},
		{32, 0, 1}, {32, 0, 2}, {32, 10, 1}, {32, 10, 2},
	}
	for i, w := range want {
		r := job.Records[i]
		if r.N != w.n || r.Errors != w.errors || r.Repeat != w.repeat {
			t.Errorf("record %d is (n=%d, errors=%g, repeat=%d), want (%d, %g, %d)",
				i, r.N, r.Errors, r.Repeat, w.n, w.errors, w.repeat)
		}
		if r.Timestamp.IsZero() {
			t.Errorf("record %d has no timestamp", i)
		}
	}
}

// One run failing must cost exactly that run's data, not the batch.
func TestFaultIsolation(t *testing.T) {
	p := Params{
		NValues:     []int{16, 32},
		ErrorValues: []float64{0},
		Repeats:     2,
		Tolerance:   bb84.DefaultTolerance,
		Seed:        1,
		runFunc: func(cfg bb84.Config) (bb84.Result, error) {
			if cfg.N == 32 && cfg.Repeat == 1 {
				return bb84.Result{}, errors.New("backend unreachable")
			}
			return bb84.Run(cfg)
		},
	}
	job, err := Run(context.Background(), p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(job.Records) != 4 {
		t.Fatalf("got %d records, want 4", len(job.Records))
	}
	for i, r := range job.Records {
		if r.N == 32 && r.Repeat == 1 {
			if r.Status != bb84.StatusError || r.Error != "backend unreachable" {
				t.Errorf("failed run recorded as %q/%q", r.Status, r.Error)
			}
			continue
		}
		if r.Status == bb84.StatusError {
			t.Errorf("record %d infected by an unrelated failure: %q", i, r.Error)
		}
	}
}

func TestPanicIsolation(t *testing.T) {
	p := Params{
		NValues:     []int{16},
		ErrorValues: []float64{0, 10},
		Repeats:     1,
		Tolerance:   bb84.DefaultTolerance,
		Seed:        1,
		runFunc: func(cfg bb84.Config) (bb84.Result, error) {
			if cfg.Errors == 10 {
				panic("simulator exploded")
			}
			return bb84.Run(cfg)
		},
	}
	job, err := Run(context.Background(), p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(job.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(job.Records))
	}
	bad := job.Records[1]
	if bad.Status != bb84.StatusError || bad.Error != "panic: simulator exploded" {
		t.Errorf("panicking run recorded as %q/%q", bad.Status, bad.Error)
	}
	if job.Records[0].Status == bb84.StatusError {
		t.Errorf("healthy run infected by sibling panic")
	}
}

// A fixed seed must reproduce the batch record for record, regardless
// of worker interleaving.
func TestReproducibleSeed(t *testing.T) {
	p := Params{
		NValues:     []int{16, 32},
		ErrorValues: []float64{0, 5, 10},
		Repeats:     3,
		Delta:       bb84.DefaultDelta,
		Tolerance:   bb84.DefaultTolerance,
		Seed:        99,
	}
	p1 := p
	p1.Workers = 1
	p8 := p
	p8.Workers = 8
	a, err := Run(context.Background(), p1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := Run(context.Background(), p8)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(a.Records) != len(b.Records) {
		t.Fatalf("record counts differ: %d != %d", len(a.Records), len(b.Records))
	}
	for i := range a.Records {
		ra, rb := a.Records[i].Result, b.Records[i].Result
		if ra != rb {
			t.Errorf("record %d differs across worker counts: %+v != %+v", i, ra, rb)
		}
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := Params{
		NValues:     []int{16},
		ErrorValues: []float64{0},
		Repeats:     5,
		Tolerance:   bb84.DefaultTolerance,
		Seed:        1,
	}
	job, err := Run(ctx, p)
	if err == nil {
		t.Fatalf("Run with cancelled context returned no error")
	}
	if len(job.Records) != 0 {
		t.Errorf("cancelled batch still scheduled %d runs", len(job.Records))
	}
}

func TestSize(t *testing.T) {
	p := Params{NValues: []int{1, 2, 3}, ErrorValues: []float64{0, 1}, Repeats: 4}
	if got := p.Size(); got != 24 {
		t.Errorf("Size() == %d, want 24", got)
	}
}

func ExampleRun() {
	job, err := Run(context.Background(), Params{
		NValues:     []int{16},
		ErrorValues: []float64{0},
		Repeats:     1,
		Delta:       1,
		Tolerance:   bb84.DefaultTolerance,
		Seed:        7,
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(len(job.Records))
	// Output: 1
}
