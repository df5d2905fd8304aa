package tx

import (
	"fmt"

	"github.com/veilnet/veil-chain/pkg/commitment"
	"github.com/veilnet/veil-chain/pkg/crypto"
	"github.com/veilnet/veil-chain/pkg/rangeproof"
)

// TransactionBuilder accumulates the parts of a transaction and
// validates the result on Build. It cannot produce an inconsistent
// transaction: only a transaction passing the full internal consistency
// protocol is ever returned.
type TransactionBuilder struct {
	body     AggregateBody
	offset   *crypto.BlindingFactor
	factory  *commitment.Factory
	verifier *rangeproof.Service
}

// NewTransactionBuilder creates an empty transaction builder.
func NewTransactionBuilder() *TransactionBuilder {
	return &TransactionBuilder{}
}

// WithOffset sets the kernel offset.
func (b *TransactionBuilder) WithOffset(offset *crypto.BlindingFactor) *TransactionBuilder {
	b.offset = offset
	return b
}

// AddInput adds a single input.
func (b *TransactionBuilder) AddInput(input TransactionInput) *TransactionBuilder {
	b.body.AddInput(input)
	return b
}

// AddOutput adds a single output.
func (b *TransactionBuilder) AddOutput(output TransactionOutput) *TransactionBuilder {
	b.body.AddOutput(output)
	return b
}

// AddInputs moves a series of inputs into the builder, leaving the
// source slice empty.
func (b *TransactionBuilder) AddInputs(inputs *[]TransactionInput) *TransactionBuilder {
	b.body.AddInputs(inputs)
	return b
}

// AddOutputs moves a series of outputs into the builder, leaving the
// source slice empty.
func (b *TransactionBuilder) AddOutputs(outputs *[]TransactionOutput) *TransactionBuilder {
	b.body.AddOutputs(outputs)
	return b
}

// WithKernel sets the transaction kernel. Only one kernel is allowed
// per transaction.
func (b *TransactionBuilder) WithKernel(kernel TransactionKernel) *TransactionBuilder {
	b.body.SetKernel(kernel)
	return b
}

// WithRangeProofService injects the verifier used by Build's validation
// pass. Without one, a production-width verifier is constructed on
// demand.
func (b *TransactionBuilder) WithRangeProofService(verifier *rangeproof.Service) *TransactionBuilder {
	b.verifier = verifier
	return b
}

// WithCommitmentFactory injects the commitment basis used by Build's
// validation pass.
func (b *TransactionBuilder) WithCommitmentFactory(factory *commitment.Factory) *TransactionBuilder {
	b.factory = factory
	return b
}

// Build constructs the transaction and runs the full internal
// consistency protocol against it, propagating any failure. Fails with
// ErrValidation if no offset was supplied.
func (b *TransactionBuilder) Build() (*Transaction, error) {
	if b.offset == nil {
		return nil, fmt.Errorf("%w: no offset provided", ErrValidation)
	}
	t := NewTransaction(b.body.Inputs, b.body.Outputs, b.body.Kernels, b.offset)
	if err := t.ValidateInternalConsistency(b.factory, b.verifier); err != nil {
		return nil, err
	}
	return t, nil
}
