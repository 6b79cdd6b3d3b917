package channel

import (
	"math/rand"

	"github.com/FedericoQuartieri/QiskitFallFest-Hackathon-2025/bb84/bitstring"
)

// A stabilizer channel computes measurement outcomes with pure mask
// arithmetic: mismatched-basis positions collapse to random bits, and
// injected noise flips outcomes directly. It produces the same outcome
// distribution as a circuit-level simulation at a fraction of the cost.
type stabilizer struct {
	errors float64
}

// Transmit implements the Channel interface.
func (s *stabilizer) Transmit(bits, sendBases, recvBases bitstring.Bits, rng *rand.Rand) (bitstring.Bits, error) {
	if err := checkLengths(bits, sendBases, recvBases); err != nil {
		return bitstring.Bits{}, err
	}
	n := bits.Len()
	flips := bitstring.Random(rng, n).And(sendBases.XOr(recvBases))
	flips = flips.Or(errorMask(s.errors, n, rng))
	return bits.XOr(flips), nil
}
