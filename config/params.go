// Package config holds protocol policy parameters.
//
// These are limits enforced by the layers that consume the transaction
// core (mempool, block assembly), not by the core's cryptographic
// checks. They must match across all nodes or relay policy diverges.
package config

import "fmt"

// Transaction policy constants.
// These are set fairly arbitrarily at the moment and will need modelling
// to tune.
const (
	// MaxTxInputs is the maximum number of inputs per transaction.
	MaxTxInputs = 500

	// MaxTxOutputs is the maximum number of outputs per transaction.
	MaxTxOutputs = 100

	// MaxTxRecipients is the maximum number of distinct recipients per
	// transaction.
	MaxTxRecipients = 15

	// MinimumFee is the minimum transaction fee in base units.
	MinimumFee uint64 = 100
)

// RangeProofBits is the production range-proof bit width. It must cover
// the full 64-bit value space: a narrower width would let values wrap
// past the proof range undetected.
const RangeProofBits = 64

// TestRangeProofBits is a diagnostic width for test harnesses only. A
// narrow range makes "value too large" scenarios cheap to construct.
const TestRangeProofBits = 32

// Params bundles the policy parameters consumed by callers. The
// range-proof width travels here as explicit data rather than a
// build-mode switch so the core stays testable with arbitrary widths.
type Params struct {
	MaxTxInputs     int
	MaxTxOutputs    int
	MaxTxRecipients int
	MinimumFee      uint64
	RangeProofBits  int
}

// DefaultParams returns the production parameters.
func DefaultParams() Params {
	return Params{
		MaxTxInputs:     MaxTxInputs,
		MaxTxOutputs:    MaxTxOutputs,
		MaxTxRecipients: MaxTxRecipients,
		MinimumFee:      MinimumFee,
		RangeProofBits:  RangeProofBits,
	}
}

// TestParams returns parameters with a narrow range-proof width for
// non-production harnesses.
func TestParams() Params {
	p := DefaultParams()
	p.RangeProofBits = TestRangeProofBits
	return p
}

// Validate checks the parameters for internal consistency.
func (p Params) Validate() error {
	if p.MaxTxInputs <= 0 {
		return fmt.Errorf("max tx inputs must be positive, got %d", p.MaxTxInputs)
	}
	if p.MaxTxOutputs <= 0 {
		return fmt.Errorf("max tx outputs must be positive, got %d", p.MaxTxOutputs)
	}
	if p.MaxTxRecipients <= 0 {
		return fmt.Errorf("max tx recipients must be positive, got %d", p.MaxTxRecipients)
	}
	if p.RangeProofBits < 1 || p.RangeProofBits > 64 {
		return fmt.Errorf("range proof bits must be in [1,64], got %d", p.RangeProofBits)
	}
	return nil
}
