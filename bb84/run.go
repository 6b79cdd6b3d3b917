package bb84

import (
	"encoding/hex"
	"fmt"
	"math/rand"

	"github.com/zeebo/blake3"

	"github.com/FedericoQuartieri/QiskitFallFest-Hackathon-2025/bb84/bitstring"
	"github.com/FedericoQuartieri/QiskitFallFest-Hackathon-2025/bb84/channel"
)

// Run executes one complete BB84 exchange described by cfg and returns
// its Result. A returned error means the run could not execute at all:
// a malformed configuration or a failing backend. Protocol aborts are
// reported inside the Result, never as an error.
func Run(cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid configuration: %w", err)
	}
	ch, err := channel.New(channel.Config{Backend: cfg.Backend, Errors: cfg.Errors})
	if err != nil {
		return Result{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return run(cfg, ch)
}

func run(cfg Config, ch channel.Channel) (Result, error) {
	total := cfg.TotalQubits()
	res := Result{
		Status:      StatusAbort,
		TotalQubits: total,
		N:           cfg.N,
		Delta:       cfg.Delta,
		Tolerance:   cfg.Tolerance,
		Errors:      cfg.Errors,
		Backend:     cfg.Backend,
		Repeat:      cfg.Repeat,
	}

	// Alice's data bits and preparation bases, Bob's measurement bases.
	bits := bitstring.Random(cfg.Rand, total)
	sendBases := bitstring.Random(cfg.Rand, total)
	recvBases := bitstring.Random(cfg.Rand, total)

	measured, err := ch.Transmit(bits, sendBases, recvBases, cfg.Rand)
	if err != nil {
		return Result{}, fmt.Errorf("transmitting qubits: %w", err)
	}

	// Sift out the positions where the bases disagree.
	match := sendBases.XNor(recvBases)
	aliceSifted := bits.Select(match)
	bobSifted := measured.Select(match)
	res.SiftedLen = aliceSifted.Len()
	if res.SiftedLen < 2*cfg.N {
		res.Reason = ReasonInsufficientSiftedBits
		return res, nil
	}
	aliceKept := aliceSifted.Slice(0, 2*cfg.N)
	bobKept := bobSifted.Slice(0, 2*cfg.N)

	// Alice announces n of the 2n kept positions as check bits; both
	// compare them in the clear.
	check := sampleMask(cfg.Rand, 2*cfg.N, cfg.N)
	mismatches := aliceKept.Select(check).XOr(bobKept.Select(check)).Ones()
	res.QBER = float64(mismatches) / float64(cfg.N)
	res.HasQBER = true
	if res.QBER > cfg.Tolerance {
		res.Reason = ReasonQBERExceedsTolerance
		return res, nil
	}

	aliceKey := aliceKept.Select(check.Not())
	bobKey := bobKept.Select(check.Not())
	res.Status = StatusSuccess
	res.KeyLength = aliceKey.Len()
	res.KeyFingerprint = fingerprint(aliceKey)
	res.KeysMatch = res.KeyFingerprint == fingerprint(bobKey)
	return res, nil
}

// sampleMask returns a mask over size positions with exactly k bits
// set, at positions chosen uniformly at random.
func sampleMask(r *rand.Rand, size, k int) bitstring.Bits {
	m := bitstring.New(size)
	for i := 0; i < k; i++ {
		m.Set(i, true)
	}
	m.Shuffle(r)
	return m
}

func fingerprint(key bitstring.Bits) string {
	sum := blake3.Sum256(key.Bytes())
	return hex.EncodeToString(sum[:])
}
