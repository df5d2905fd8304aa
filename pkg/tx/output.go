// Package tx defines the confidential transaction model: unblinded
// outputs, inputs, outputs, kernels, their builders, and the internal
// consistency validation protocol.
package tx

import (
	"bytes"
	"fmt"

	"github.com/veilnet/veil-chain/config"
	"github.com/veilnet/veil-chain/pkg/commitment"
	"github.com/veilnet/veil-chain/pkg/crypto"
	"github.com/veilnet/veil-chain/pkg/rangeproof"
	"github.com/veilnet/veil-chain/pkg/types"
)

// UnblindedOutput is an output whose value and spending key (blinding
// factor) are known. It is the only entity holding a cleartext value and
// exists only transiently on the owning party's side: it is never
// serialized, transmitted, or persisted. Every input comes from one.
type UnblindedOutput struct {
	Value       uint64
	SpendingKey *crypto.BlindingFactor
	Features    OutputFeatures
}

// NewUnblindedOutput creates a new unblinded output.
func NewUnblindedOutput(value uint64, spendingKey *crypto.BlindingFactor, features OutputFeatures) UnblindedOutput {
	return UnblindedOutput{
		Value:       value,
		SpendingKey: spendingKey,
		Features:    features,
	}
}

// Input converts the unblinded output into a transaction input spending
// it. Commitment construction over valid scalars cannot fail, so the
// conversion is total.
func (u *UnblindedOutput) Input(factory *commitment.Factory) TransactionInput {
	return TransactionInput{
		Features:   u.Features,
		Commitment: factory.Commit(u.Value, u.SpendingKey),
	}
}

// Output converts the unblinded output into a blinded transaction
// output carrying a range proof constructed by the given service.
//
// The freshly constructed proof is immediately self-verified: a prover
// can construct a well-formed proof for an out-of-range value, and only
// verification catches it. Failing here surfaces the problem at
// creation instead of letting a broken output into the system.
func (u *UnblindedOutput) Output(factory *commitment.Factory, prover *rangeproof.Service) (TransactionOutput, error) {
	proof, err := prover.ConstructProof(u.SpendingKey, u.Value)
	if err != nil {
		return TransactionOutput{}, fmt.Errorf("%w: %v", ErrRangeProof, err)
	}

	out := TransactionOutput{
		Features:   u.Features,
		Commitment: factory.Commit(u.Value, u.SpendingKey),
		Proof:      proof,
	}

	ok, err := out.VerifyRangeProof(prover)
	if err != nil {
		return TransactionOutput{}, err
	}
	if !ok {
		return TransactionOutput{}, fmt.Errorf("%w: range proof could not be verified", ErrValidation)
	}
	return out, nil
}

// OutputWithBits is Output with an on-demand prover for the given bit
// width. Fails with ErrRangeProof if the prover cannot be constructed.
func (u *UnblindedOutput) OutputWithBits(factory *commitment.Factory, bits int) (TransactionOutput, error) {
	prover, err := rangeproof.New(bits, factory)
	if err != nil {
		return TransactionOutput{}, fmt.Errorf("%w: %v", ErrRangeProof, err)
	}
	return u.Output(factory, prover)
}

// TransactionInput references a previously created output being spent.
type TransactionInput struct {
	// Features of the output being spent.
	Features OutputFeatures
	// Commitment referencing the output being spent.
	Commitment commitment.Commitment
}

// NewTransactionInput creates a transaction input.
func NewTransactionInput(features OutputFeatures, c commitment.Commitment) TransactionInput {
	return TransactionInput{Features: features, Commitment: c}
}

// OpenedBy reports whether the given unblinded output opens this input's
// commitment.
func (in *TransactionInput) OpenedBy(u *UnblindedOutput, factory *commitment.Factory) bool {
	return factory.Open(in.Commitment, u.Value, u.SpendingKey)
}

// Hash produces the canonical hash of the input:
// H(feature_bits || commitment).
func (in *TransactionInput) Hash() types.Hash {
	buf := make([]byte, 0, 1+commitment.Size)
	buf = append(buf, byte(in.Features))
	buf = append(buf, in.Commitment[:]...)
	return crypto.Hash(buf)
}

// TransactionOutput defines new ownership of coins being transferred.
// The commitment blinds the amount; the range proof guarantees it is a
// non-negative value without overflow. The zero value is the structural
// placeholder output (identity commitment, empty proof).
type TransactionOutput struct {
	// Features of the output's structure or use.
	Features OutputFeatures
	// Homomorphic commitment to the output amount.
	Commitment commitment.Commitment
	// Proof that the committed amount is in range.
	Proof rangeproof.Proof
}

// NewTransactionOutput creates a transaction output.
func NewTransactionOutput(features OutputFeatures, c commitment.Commitment, proof rangeproof.Proof) TransactionOutput {
	return TransactionOutput{Features: features, Commitment: c, Proof: proof}
}

// VerifyRangeProof checks the output's proof against its commitment. A
// nil verifier constructs one on demand at the production bit width,
// which can itself fail with ErrRangeProof; callers verifying many
// outputs should inject a shared verifier to amortize that setup.
func (o *TransactionOutput) VerifyRangeProof(verifier *rangeproof.Service) (bool, error) {
	if verifier == nil {
		var err error
		verifier, err = rangeproof.New(config.RangeProofBits, commitment.NewFactory())
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrRangeProof, err)
		}
	}
	return verifier.Verify(o.Proof, o.Commitment), nil
}

// Hash produces the canonical hash of the output:
// H(feature_bits || commitment || proof).
func (o *TransactionOutput) Hash() types.Hash {
	buf := make([]byte, 0, 1+commitment.Size+len(o.Proof))
	buf = append(buf, byte(o.Features))
	buf = append(buf, o.Commitment[:]...)
	buf = append(buf, o.Proof...)
	return crypto.Hash(buf)
}

// inputLess is the total order on inputs used for canonical
// serialization: by (features, commitment).
func inputLess(a, b TransactionInput) bool {
	if a.Features != b.Features {
		return a.Features < b.Features
	}
	return bytes.Compare(a.Commitment[:], b.Commitment[:]) < 0
}

// outputLess is the total order on outputs: by (features, commitment,
// proof).
func outputLess(a, b TransactionOutput) bool {
	if a.Features != b.Features {
		return a.Features < b.Features
	}
	if c := bytes.Compare(a.Commitment[:], b.Commitment[:]); c != 0 {
		return c < 0
	}
	return bytes.Compare(a.Proof, b.Proof) < 0
}
