// Package bb84 simulates the BB84 quantum key distribution protocol
// between its two legitimate participants.
//
// One run proceeds as the textbook protocol does:
//
//  1. Alice chooses (4 + delta) * n random data bits and as many random
//     bases, and encodes each bit in {|0>, |1>} or {|+>, |->}
//     accordingly.
//  2. Alice sends the resulting qubits to Bob over a (simulated)
//     quantum channel, which may flip outcomes in transit.
//  3. Bob measures each qubit in the rectilinear or diagonal basis at
//     random.
//  4. Both discard the positions where their bases disagree (sifting).
//     With high probability at least 2n bits remain; if not, the run
//     aborts. The first 2n survivors are kept.
//  5. Alice selects n of the kept positions as a check on interference
//     and both compare them publicly. If the observed error rate
//     exceeds the tolerance, the run aborts.
//  6. The remaining n positions form the shared key.
//
// Aborting is a valid protocol outcome, not a failure: it is how BB84
// reports detected eavesdropping or excess channel noise.
package bb84

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	mrand "math/rand"
)

// Defaults for the tunable protocol parameters.
var (
	DefaultDelta     = 0.2
	DefaultTolerance = 0.11
)

// A Config packages together the parameters of a single protocol run.
// The zero value is not usable: N must be positive and Rand non-nil.
type Config struct {
	// N is the target length of the final key, and drives the number of
	// qubits transmitted. Must be positive.
	N int

	// Delta is the security margin: transmission is inflated to
	// (4 + Delta) * N qubits to tolerate sifting loss and check-bit
	// consumption.
	Delta float64

	// Tolerance is the maximum acceptable quantum bit error rate on the
	// publicly compared check bits. Must lie in [0, 1].
	Tolerance float64

	// Errors is the expected number of flipped transmissions injected
	// by the channel per run. Must be non-negative.
	Errors float64

	// Backend names the channel simulation strategy. Empty selects the
	// fastest available backend.
	Backend string

	// Repeat labels which repetition of an otherwise identical
	// configuration this is. Labeling only; it never affects the run.
	Repeat int

	// Rand is this run's private source of randomness. Parallel runs
	// must not share one instance. Must be non-nil.
	Rand *mrand.Rand
}

// Validate reports whether c describes a well-formed protocol run.
func (c Config) Validate() error {
	if c.N <= 0 {
		return fmt.Errorf("target key length must be positive, got %d", c.N)
	}
	if c.Delta < 0 {
		return fmt.Errorf("security margin must be non-negative, got %g", c.Delta)
	}
	if c.Tolerance < 0 || c.Tolerance > 1 {
		return fmt.Errorf("tolerance must lie in [0, 1], got %g", c.Tolerance)
	}
	if c.Errors < 0 {
		return fmt.Errorf("injected error count must be non-negative, got %g", c.Errors)
	}
	if c.Rand == nil {
		return fmt.Errorf("must provide Rand")
	}
	return nil
}

// TotalQubits returns the number of qubits one run of this
// configuration transmits: ceil((4 + Delta) * N).
func (c Config) TotalQubits() int {
	return int(math.Ceil((4 + c.Delta) * float64(c.N)))
}

// RandomSeed draws a fresh seed from the OS entropy pool, for callers
// that want statistically independent rather than reproducible runs.
func RandomSeed() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("reading OS entropy: %v", err))
	}
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1)
}
