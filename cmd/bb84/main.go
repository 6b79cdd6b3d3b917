// bb84 runs a single simulated BB84 key negotiation and reports the
// outcome as human-readable text or as one JSON object on stdout.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/FedericoQuartieri/QiskitFallFest-Hackathon-2025/bb84"
	"github.com/FedericoQuartieri/QiskitFallFest-Hackathon-2025/bb84/channel"
)

var (
	n         = flag.Int("n", 32, "Target final key length.")
	delta     = flag.Float64("delta", bb84.DefaultDelta, "Security margin in (4+delta)*n transmitted qubits.")
	tolerance = flag.Float64("tolerance", bb84.DefaultTolerance, "Maximum acceptable QBER on the check bits.")
	errCount  = flag.Float64("errors", 0, "Expected number of flipped transmissions to inject.")
	backend   = flag.String("backend", channel.DefaultBackend, "Channel simulation backend.")
	seed      = flag.Int64("seed", 0, "RNG seed; 0 draws one from the OS.")
	asJSON    = flag.Bool("json", false, "Emit the result as JSON instead of text.")
)

func main() {
	flag.Parse()
	s := *seed
	if s == 0 {
		s = bb84.RandomSeed()
	}
	cfg := bb84.Config{
		N:         *n,
		Delta:     *delta,
		Tolerance: *tolerance,
		Errors:    *errCount,
		Backend:   *backend,
		Rand:      rand.New(rand.NewSource(s)),
	}
	res, err := bb84.Run(cfg)
	if err != nil {
		log.Fatalf("Running BB84: %v", err)
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		if err := enc.Encode(res); err != nil {
			log.Fatalf("Encoding result: %v", err)
		}
		return
	}
	printResult(res)
}

func printResult(res bb84.Result) {
	if res.Status != bb84.StatusSuccess {
		fmt.Printf("BB84 aborted: %s\n", res.Reason)
		fmt.Printf("Total qubits sent: %d\n", res.TotalQubits)
		fmt.Printf("Sifted bits available: %d\n", res.SiftedLen)
		if res.HasQBER {
			fmt.Printf("QBER on checked bits: %.4f\n", res.QBER)
		}
		os.Exit(1)
	}
	fmt.Println("BB84 run successful")
	fmt.Printf("Total qubits sent: %d\n", res.TotalQubits)
	fmt.Printf("Sifted bits available: %d\n", res.SiftedLen)
	fmt.Printf("QBER on checked bits: %.4f\n", res.QBER)
	fmt.Printf("Shared key length: %d\n", res.KeyLength)
	fmt.Printf("Key fingerprint: %s\n", res.KeyFingerprint)
	if !res.KeysMatch {
		fmt.Println("Warning: undetected errors, the two keys differ")
	}
}
