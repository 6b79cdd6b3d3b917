package bb84

import "encoding/json"

// A Status is the terminal disposition of one protocol run.
type Status string

const (
	// StatusSuccess: the run produced a shared key.
	StatusSuccess Status = "success"
	// StatusAbort: the protocol detected interference or excess noise
	// and stopped safely. An expected outcome, not a fault.
	StatusAbort Status = "abort"
	// StatusError: the run could not execute at all, e.g. the
	// simulation backend failed. Only the batch harness records this;
	// single runs surface the failure to the caller instead.
	StatusError Status = "error"
)

// An AbortReason says why a run ended with StatusAbort.
type AbortReason string

const (
	// ReasonInsufficientSiftedBits: fewer than 2n positions survived
	// sifting, so no check set could be formed. QBER is undefined.
	ReasonInsufficientSiftedBits AbortReason = "insufficient_sifted_bits"
	// ReasonQBERExceedsTolerance: the check bits disagreed more often
	// than the configured tolerance allows. QBER was computed before
	// the threshold check and is populated.
	ReasonQBERExceedsTolerance AbortReason = "qber_exceeds_tolerance"
)

// A Result is the engine's sole output for one run. It is never
// mutated after construction.
type Result struct {
	Status Status      `json:"status"`
	Reason AbortReason `json:"reason,omitempty"`

	// QBER is the fraction of mismatched check bits. Defined only when
	// HasQBER is true, i.e. when a check set existed.
	QBER    float64 `json:"-"`
	HasQBER bool    `json:"-"`

	TotalQubits int `json:"total_qubits"`
	SiftedLen   int `json:"sifted_len"`
	// KeyLength is the length of the shared key: exactly N on success,
	// zero otherwise.
	KeyLength int `json:"key_length"`

	// KeyFingerprint is a BLAKE3 digest of Alice's key bits, and
	// KeysMatch whether Bob's key bits digest identically. Errors the
	// check sample happened to miss leave the run successful but the
	// keys unequal; this makes that visible without exposing key bits.
	KeyFingerprint string `json:"key_fingerprint,omitempty"`
	KeysMatch      bool   `json:"keys_match"`

	// The originating configuration, echoed for downstream joining.
	N         int     `json:"n"`
	Delta     float64 `json:"delta"`
	Tolerance float64 `json:"tolerance"`
	Errors    float64 `json:"errors"`
	Backend   string  `json:"backend"`
	Repeat    int     `json:"repeat"`
}

// MarshalJSON emits qber only when it is defined.
func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	out := struct {
		alias
		QBER *float64 `json:"qber,omitempty"`
	}{alias: alias(r)}
	if r.HasQBER {
		out.QBER = &r.QBER
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *Result) UnmarshalJSON(data []byte) error {
	type alias Result
	in := struct {
		*alias
		QBER *float64 `json:"qber"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.QBER != nil {
		r.QBER = *in.QBER
		r.HasQBER = true
	}
	return nil
}
