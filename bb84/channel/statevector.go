package channel

import (
	"math"
	"math/rand"

	"github.com/FedericoQuartieri/QiskitFallFest-Hackathon-2025/bb84/bitstring"
)

// A statevector channel simulates each qubit as an explicit
// two-amplitude state: prepare in the sender's basis, rotate into the
// receiver's basis, and sample the measurement from the Born rule.
// Injected noise flips measurement outcomes, as in the stabilizer
// backend. Slower, but independent machinery against which the mask
// arithmetic can be checked.
type statevector struct {
	errors float64
}

// Transmit implements the Channel interface.
func (s *statevector) Transmit(bits, sendBases, recvBases bitstring.Bits, rng *rand.Rand) (bitstring.Bits, error) {
	if err := checkLengths(bits, sendBases, recvBases); err != nil {
		return bitstring.Bits{}, err
	}
	n := bits.Len()
	mask := errorMask(s.errors, n, rng)
	out := bitstring.New(n)
	for i := 0; i < n; i++ {
		a0, a1 := prepare(bits.Get(i), sendBases.Get(i))
		m := measure(a0, a1, recvBases.Get(i), rng)
		out.Set(i, m != mask.Get(i))
	}
	return out, nil
}

// prepare returns the amplitudes of a qubit encoding bit in the given
// basis: rectilinear {|0>,|1>} when diag is false, diagonal {|+>,|->}
// when true.
func prepare(bit, diag bool) (a0, a1 float64) {
	if !diag {
		if bit {
			return 0, 1
		}
		return 1, 0
	}
	if bit {
		return math.Sqrt2 / 2, -math.Sqrt2 / 2
	}
	return math.Sqrt2 / 2, math.Sqrt2 / 2
}

// measure collapses the state in the requested basis and returns the
// logical outcome. Measuring in the diagonal basis is a Hadamard
// rotation followed by a rectilinear measurement.
func measure(a0, a1 float64, diag bool, rng *rand.Rand) bool {
	if diag {
		h := math.Sqrt2 / 2
		a0, a1 = h*(a0+a1), h*(a0-a1)
	}
	return rng.Float64() < a1*a1
}
