// Package channel simulates the quantum channel of a BB84 exchange:
// preparation of qubit pulses by the sender, noise in transit, and
// measurement by the receiver in a basis of its choosing.
package channel

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/FedericoQuartieri/QiskitFallFest-Hackathon-2025/bb84/bitstring"
)

// Backend names understood by New.
const (
	Stabilizer  = "stabilizer"
	Statevector = "statevector"
)

// DefaultBackend is the fastest available simulation strategy.
const DefaultBackend = Stabilizer

// A Config packages together the parameters of a simulated channel.
type Config struct {
	// Backend names the simulation strategy. Empty selects
	// DefaultBackend.
	Backend string

	// Errors is the expected number of flipped measurement outcomes to
	// inject per transmission. Must be non-negative.
	Errors float64
}

// A Channel produces the receiver's measurement outcomes for one batch
// of transmitted qubits.
type Channel interface {
	// Transmit takes the sender's bit values and preparation bases and
	// the receiver's measurement bases, all of equal length, and
	// returns the receiver's measured bits. Where bases agree and no
	// error is injected the measured bit equals the sent bit; where
	// they disagree the outcome is uniformly random.
	Transmit(bits, sendBases, recvBases bitstring.Bits, rng *rand.Rand) (bitstring.Bits, error)
}

// New returns the channel simulation strategy named by cfg.Backend, or
// an error if the name is unknown or the noise level is nonsensical.
func New(cfg Config) (Channel, error) {
	if cfg.Errors < 0 {
		return nil, fmt.Errorf("channel error count must be non-negative, got %g", cfg.Errors)
	}
	switch cfg.Backend {
	case "", Stabilizer:
		return &stabilizer{errors: cfg.Errors}, nil
	case Statevector:
		return &statevector{errors: cfg.Errors}, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// errorMask returns an n-bit mask with min(round(errs), n) bits set at
// random positions.
func errorMask(errs float64, n int, rng *rand.Rand) bitstring.Bits {
	k := int(math.Round(errs))
	if k > n {
		k = n
	}
	m := bitstring.New(n)
	for i := 0; i < k; i++ {
		m.Set(i, true)
	}
	m.Shuffle(rng)
	return m
}

func checkLengths(bits, sendBases, recvBases bitstring.Bits) error {
	if bits.Len() != sendBases.Len() || bits.Len() != recvBases.Len() {
		return fmt.Errorf("bit and basis lengths must agree: %d, %d, %d",
			bits.Len(), sendBases.Len(), recvBases.Len())
	}
	return nil
}
