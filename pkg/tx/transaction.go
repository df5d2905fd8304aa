package tx

import (
	"fmt"

	"github.com/veilnet/veil-chain/pkg/commitment"
	"github.com/veilnet/veil-chain/pkg/crypto"
	"github.com/veilnet/veil-chain/pkg/rangeproof"
)

// Transaction is a kernel offset plus an aggregate body of inputs,
// outputs, and (exactly one, in this model) kernel.
//
// The offset is accumulated when transactions are aggregated into
// blocks. It prevents the "subset" problem: without it an observer
// could test which subsets of inputs and outputs a kernel excess is
// linkable to.
type Transaction struct {
	// Offset is the kernel offset blinding factor.
	Offset *crypto.BlindingFactor
	// Body holds the transaction's constituents; same structure as the
	// body of a block.
	Body AggregateBody
}

// NewTransaction creates a transaction from the provided parts.
func NewTransaction(inputs []TransactionInput, outputs []TransactionOutput, kernels []TransactionKernel, offset *crypto.BlindingFactor) *Transaction {
	return &Transaction{
		Offset: offset,
		Body:   NewAggregateBody(inputs, outputs, kernels),
	}
}

// KernelSum is the fold accumulator used while summing kernels: the
// summed excess commitments (offset included) and the total fees.
type KernelSum struct {
	Sum  commitment.Commitment
	Fees uint64
}

// sumCommitments calculates sum(outputs) - sum(inputs) + commit(fees, 0).
func (t *Transaction) sumCommitments(fees uint64, factory *commitment.Factory) commitment.Commitment {
	feeCommitment := factory.Commit(fees, nil)

	sumInputs := factory.Zero()
	for i := range t.Body.Inputs {
		sumInputs = factory.Add(sumInputs, t.Body.Inputs[i].Commitment)
	}
	sumOutputs := factory.Zero()
	for i := range t.Body.Outputs {
		sumOutputs = factory.Add(sumOutputs, t.Body.Outputs[i].Commitment)
	}

	return factory.Add(factory.Sub(sumOutputs, sumInputs), feeCommitment)
}

// sumKernels folds the kernels into their summed excess and fees,
// seeding the sum with the offset's public key as a commitment.
func (t *Transaction) sumKernels(factory *commitment.Factory) (KernelSum, error) {
	offsetPub := t.Offset.PublicKey()
	offsetCommitment, err := factory.FromPublicKey(offsetPub[:])
	if err != nil {
		return KernelSum{}, fmt.Errorf("%w: offset is not a valid public key: %v", ErrValidation, err)
	}

	acc := KernelSum{Sum: offsetCommitment}
	for i := range t.Body.Kernels {
		acc.Fees += t.Body.Kernels[i].Fee
		acc.Sum = factory.Add(acc.Sum, t.Body.Kernels[i].Excess)
	}
	return acc, nil
}

// validateKernelSum confirms the balance equation: the summed kernel
// excesses plus the offset equal sum(outputs) - sum(inputs) + fees.
// Commitment equality here is bit-for-bit; because commitments are
// additively homomorphic and binding, equality of the two aggregates
// proves inputs = outputs + fees without recovering any amount.
func (t *Transaction) validateKernelSum(factory *commitment.Factory) error {
	kernelSum, err := t.sumKernels(factory)
	if err != nil {
		return err
	}
	sumIO := t.sumCommitments(kernelSum.Fees, factory)

	if kernelSum.Sum != sumIO {
		return fmt.Errorf("%w: sum of inputs and outputs did not equal sum of kernels with fees", ErrValidation)
	}
	return nil
}

// validateRangeProofs verifies every output's range proof. A nil
// verifier is constructed on demand per output check; callers with many
// transactions should inject a shared one.
func (t *Transaction) validateRangeProofs(verifier *rangeproof.Service) error {
	for i := range t.Body.Outputs {
		ok, err := t.Body.Outputs[i].VerifyRangeProof(verifier)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: range proof could not be verified for output %d", ErrValidation, i)
		}
	}
	return nil
}

// ValidateInternalConsistency validates the transaction by checking,
// in order and stopping at the first failure:
//
//  1. every kernel excess signature signs the canonical challenge;
//  2. the sum of inputs, outputs and fees equals the public excess
//     plus the offset;
//  3. the range proofs of all outputs are valid.
//
// The order runs the cheap checks first: signature and balance checks
// are plain group arithmetic, range-proof verification is the expensive
// step and is deferred so malformed transactions fail fast.
//
// A nil factory or verifier is constructed on demand. The check is
// idempotent and mutates nothing; it does NOT check that inputs come
// from the UTXO set.
func (t *Transaction) ValidateInternalConsistency(factory *commitment.Factory, verifier *rangeproof.Service) error {
	if factory == nil {
		factory = commitment.NewFactory()
	}
	if err := t.Body.VerifyKernelSignatures(); err != nil {
		return err
	}
	if err := t.validateKernelSum(factory); err != nil {
		return err
	}
	return t.validateRangeProofs(verifier)
}

// TotalFees returns the sum of all kernel fees.
func (t *Transaction) TotalFees() uint64 {
	var fees uint64
	for i := range t.Body.Kernels {
		fees += t.Body.Kernels[i].Fee
	}
	return fees
}
